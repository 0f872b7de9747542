package gamedata

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// FixturesVersion names the embedded fixture registry in the version table.
const FixturesVersion = "fixtures"

//go:embed fixtures/light.yaml
var fixturesYAML []byte

type fixtureFile struct {
	Blocks []fixtureBlock `yaml:"blocks"`
}

type fixtureBlock struct {
	ID        int      `yaml:"id"`
	Name      string   `yaml:"name"`
	Class     string   `yaml:"class,omitempty"`
	Filter    int      `yaml:"filter,omitempty"`
	Emission  int      `yaml:"emission,omitempty"`
	FullFaces []string `yaml:"full_faces,omitempty,flow"`
}

// Fixtures returns the embedded engineered registry (air, stone, glass,
// torch, stairs, filter, glowstone, slab_top).
func Fixtures() (*Blocks, error) {
	return LoadFixtures(bytes.NewReader(fixturesYAML))
}

// LoadFixtures reads a YAML fixture table of block states.
func LoadFixtures(r io.Reader) (*Blocks, error) {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	blocks := make([]Block, 0, len(f.Blocks))
	for _, fb := range f.Blocks {
		p := LightProperties{Filter: fb.Filter, Emission: fb.Emission}
		switch fb.Class {
		case "", "transparent":
			p.Class = Transparent
		case "filter":
			p.Class = Filter
		case "opaque":
			p.Class = Opaque
			p.Full = AllFaces
		default:
			return nil, fmt.Errorf("block %q: unknown class %q", fb.Name, fb.Class)
		}
		for _, name := range fb.FullFaces {
			face, err := ParseFace(name)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", fb.Name, err)
			}
			p.Full = p.Full.With(face)
		}

		filter := 0
		switch p.Class {
		case Opaque:
			filter = 15
		case Filter:
			filter = p.Filter
		}
		blocks = append(blocks, Block{
			ID:          fb.ID,
			Name:        fb.Name,
			DisplayName: fb.Name,
			Transparent: p.Class != Opaque,
			EmitLight:   p.Emission,
			FilterLight: filter,
			Light:       p,
		})
	}
	return NewBlocks(blocks)
}

// WriteFixtures writes blocks as a YAML fixture table readable by
// LoadFixtures. Opaque states imply every full face, so their faces are not
// listed.
func WriteFixtures(w io.Writer, header string, blocks []Block) error {
	f := fixtureFile{Blocks: make([]fixtureBlock, 0, len(blocks))}
	for _, b := range blocks {
		p := b.Light
		fb := fixtureBlock{ID: b.ID, Name: b.Name, Emission: p.Emission}
		switch p.Class {
		case Opaque:
			fb.Class = "opaque"
		case Filter:
			fb.Class = "filter"
			fb.Filter = p.Filter
		default:
			for _, face := range Faces {
				if p.Full.Has(face) {
					fb.FullFaces = append(fb.FullFaces, face.String())
				}
			}
		}
		f.Blocks = append(f.Blocks, fb)
	}

	if header != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", header); err != nil {
			return fmt.Errorf("write fixtures: %w", err)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("write fixtures: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write fixtures: %w", err)
	}
	return nil
}
