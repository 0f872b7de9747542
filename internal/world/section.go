package world

import (
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

// Section holds block states and light for a 16×16×16 slice of a chunk.
// Index = y*256 + z*16 + x.
type Section struct {
	Y      int // section index, Y>>4 of its voxels
	blocks [light.Volume]gamedata.State
	light  *light.Array // nil until lit
	nonAir int
}

func newSection(y int) *Section {
	return &Section{Y: y}
}

// Block returns the state at in-section index i.
func (s *Section) Block(i int) gamedata.State {
	return s.blocks[i]
}

func (s *Section) setBlock(i int, st gamedata.State) gamedata.State {
	old := s.blocks[i]
	switch {
	case old == 0 && st != 0:
		s.nonAir++
	case old != 0 && st == 0:
		s.nonAir--
	}
	s.blocks[i] = st
	return old
}

// Empty reports whether the section holds only air.
func (s *Section) Empty() bool { return s.nonAir == 0 }

// Lit reports whether the section has a light array.
func (s *Section) Lit() bool { return s.light != nil }

// Light returns a copy of the section's light, or nil when unset.
func (s *Section) Light() *light.Array {
	return s.light.Clone()
}

// Solid reports whether every voxel on face f of the section is opaque.
func (s *Section) Solid(t *gamedata.LightTable, f gamedata.Face) bool {
	if s.nonAir < 256 {
		return false
	}
	solid := true
	forFace(f, func(x, y, z int) bool {
		if !t.Props(s.blocks[light.Index(x, y, z)]).IsOpaque() {
			solid = false
			return false
		}
		return true
	})
	return solid
}

// forFace calls fn for every local coordinate on face f of a section until
// fn returns false.
func forFace(f gamedata.Face, fn func(x, y, z int) bool) {
	for a := 0; a < 16; a++ {
		for b := 0; b < 16; b++ {
			var x, y, z int
			switch f {
			case gamedata.Down:
				x, y, z = a, 0, b
			case gamedata.Up:
				x, y, z = a, 15, b
			case gamedata.North:
				x, y, z = a, b, 0
			case gamedata.South:
				x, y, z = a, b, 15
			case gamedata.West:
				x, y, z = 0, a, b
			default:
				x, y, z = 15, a, b
			}
			if !fn(x, y, z) {
				return
			}
		}
	}
}
