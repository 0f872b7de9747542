package gamedata

import "fmt"

// Block is one block type of a registry together with the light attributes
// the light engine consumes.
type Block struct {
	ID          int
	Name        string
	DisplayName string
	BoundingBox string
	Material    string
	Transparent bool
	EmitLight   int
	FilterLight int
	Light       LightProperties
}

// LightClass is the closed opacity classification of a block state.
type LightClass uint8

const (
	// Transparent states let light pass at the normal step cost.
	Transparent LightClass = iota
	// Filter states let light pass at an extra cost of LightProperties.Filter.
	Filter
	// Opaque states stop light entirely.
	Opaque
)

func (c LightClass) String() string {
	switch c {
	case Transparent:
		return "transparent"
	case Filter:
		return "filter"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Face is one of the six axis-aligned faces of a voxel. It doubles as the
// direction of a 6-connected step.
type Face uint8

const (
	Down Face = iota
	Up
	North // -Z
	South // +Z
	West  // -X
	East  // +X
)

// Faces lists every face in index order.
var Faces = [...]Face{Down, Up, North, South, West, East}

// Opposite returns the face on the other side of the voxel.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Offset returns the unit step of the face's direction.
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case Down:
		return 0, -1, 0
	case Up:
		return 0, 1, 0
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case West:
		return -1, 0, 0
	default:
		return 1, 0, 0
	}
}

func (f Face) String() string {
	switch f {
	case Down:
		return "down"
	case Up:
		return "up"
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	default:
		return fmt.Sprintf("face(%d)", uint8(f))
	}
}

// ParseFace maps a face name to its Face.
func ParseFace(name string) (Face, error) {
	for _, f := range Faces {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown face %q", name)
}

// FaceMask is a set of faces.
type FaceMask uint8

// AllFaces contains every face.
const AllFaces FaceMask = 1<<6 - 1

// Has reports whether f is in the mask.
func (m FaceMask) Has(f Face) bool { return m&(1<<f) != 0 }

// With returns the mask including f.
func (m FaceMask) With(f Face) FaceMask { return m | 1<<f }

// LightProperties describes how a block state interacts with light.
type LightProperties struct {
	Class    LightClass
	Filter   int      // extra cost per voxel, only for Filter states
	Emission int      // emitted block light, 0-15
	Full     FaceMask // faces fully covered by the state's shape
}

// IsOpaque reports whether no light may enter the state.
func (p LightProperties) IsOpaque() bool { return p.Class == Opaque }

// BlocksFace reports whether light cannot cross face f of the state.
func (p LightProperties) BlocksFace(f Face) bool {
	return p.Class == Opaque || p.Full.Has(f)
}

// Validate checks the property ranges.
func (p LightProperties) Validate() error {
	if p.Emission < 0 || p.Emission > 15 {
		return fmt.Errorf("emission %d out of range [0,15]", p.Emission)
	}
	if p.Filter < 0 || p.Filter > 15 {
		return fmt.Errorf("filter %d out of range [0,15]", p.Filter)
	}
	if p.Class != Filter && p.Filter != 0 {
		return fmt.Errorf("filter %d set on %s state", p.Filter, p.Class)
	}
	if p.Class == Filter && p.Filter == 0 {
		return fmt.Errorf("filter state without filter amount")
	}
	return nil
}

// DeriveLight computes the light properties of a minecraft-data block entry.
// filterLight 15 means fully opaque; anything between 1 and 14 filters.
func DeriveLight(emitLight, filterLight int) LightProperties {
	p := LightProperties{Emission: clampLevel(emitLight)}
	switch f := clampLevel(filterLight); {
	case f >= 15:
		p.Class = Opaque
		p.Full = AllFaces
	case f > 0:
		p.Class = Filter
		p.Filter = f
	default:
		p.Class = Transparent
	}
	return p
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 15 {
		return 15
	}
	return v
}
