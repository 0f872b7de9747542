// Package sim runs light scenarios: a flat chunk grid with region fills,
// a sequence of block changes, and probes of the resulting light.
package sim

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/voxel-light/internal/world"
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/world/gen"
)

// Scenario is the YAML description of one simulation.
type Scenario struct {
	Name     string   `yaml:"name"`
	Chunks   Area     `yaml:"chunks"`
	Sections []int    `yaml:"sections"` // [lo, hi] kept present in every chunk
	Layers   []Layer  `yaml:"layers"`
	Fills    []Fill   `yaml:"fills"`
	Changes  []Change `yaml:"changes"`
	Probes   []Probe  `yaml:"probes"`
	Verify   bool     `yaml:"verify"` // recompute everything and compare
}

// Area is an inclusive rectangle of chunk positions.
type Area struct {
	MinX int `yaml:"min_x"`
	MaxX int `yaml:"max_x"`
	MinZ int `yaml:"min_z"`
	MaxZ int `yaml:"max_z"`
}

// Positions lists the chunks of a, x-major.
func (a Area) Positions() []world.ChunkPos {
	var out []world.ChunkPos
	for x := a.MinX; x <= a.MaxX; x++ {
		for z := a.MinZ; z <= a.MaxZ; z++ {
			out = append(out, world.ChunkPos{X: x, Z: z})
		}
	}
	return out
}

// Layer fills every chunk between MinY and MaxY inclusive.
type Layer struct {
	Block string `yaml:"block"`
	Meta  int    `yaml:"meta"`
	MinY  int    `yaml:"min_y"`
	MaxY  int    `yaml:"max_y"`
}

// Fill writes a block into a box of global coordinates, bounds inclusive.
type Fill struct {
	Block string `yaml:"block"`
	Meta  int    `yaml:"meta"`
	From  [3]int `yaml:"from"`
	To    [3]int `yaml:"to"`
}

// Change is one block write applied after the grid has loaded.
type Change struct {
	Block string `yaml:"block"`
	Meta  int    `yaml:"meta"`
	At    [3]int `yaml:"at"`
}

// Probe checks the light at one voxel. Nil levels are not checked.
type Probe struct {
	At    [3]int `yaml:"at"`
	Block *int   `yaml:"block"`
	Sky   *int   `yaml:"sky"`
}

// Pos returns the probed position.
func (p Probe) Pos() world.BlockPos {
	return world.BlockPos{X: p.At[0], Y: p.At[1], Z: p.At[2]}
}

// Parse reads a YAML scenario.
func Parse(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Chunks.MinX > sc.Chunks.MaxX || sc.Chunks.MinZ > sc.Chunks.MaxZ {
		return nil, fmt.Errorf("scenario %q: empty chunk area", sc.Name)
	}
	if n := len(sc.Sections); n != 0 && n != 2 {
		return nil, fmt.Errorf("scenario %q: sections must be [lo, hi]", sc.Name)
	}
	for _, c := range sc.Changes {
		if p := (world.BlockPos{X: c.At[0], Y: c.At[1], Z: c.At[2]}); !p.Valid() {
			return nil, fmt.Errorf("scenario %q: change at %v is outside the world", sc.Name, p)
		}
	}
	for _, p := range sc.Probes {
		if !p.Pos().Valid() {
			return nil, fmt.Errorf("scenario %q: probe at %v is outside the world", sc.Name, p.Pos())
		}
	}
	return &sc, nil
}

// resolve returns the state of a named block.
func resolve(reg gamedata.BlockRegistry, name string, meta int) (gamedata.State, error) {
	b, ok := reg.ByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown block %q", name)
	}
	return gamedata.StateOf(b.ID, meta), nil
}

// Generator builds the chunk generator of sc.
func (sc *Scenario) Generator(reg gamedata.BlockRegistry) (gen.Generator, error) {
	layers := make([]gen.Layer, 0, len(sc.Layers))
	for _, l := range sc.Layers {
		st, err := resolve(reg, l.Block, l.Meta)
		if err != nil {
			return nil, fmt.Errorf("layer: %w", err)
		}
		layers = append(layers, gen.Layer{State: st, MinY: l.MinY, MaxY: l.MaxY})
	}
	flat := gen.NewFlatGenerator(layers...)
	if len(sc.Sections) == 2 {
		flat.WithSections(sc.Sections[0], sc.Sections[1])
	}
	if len(sc.Fills) == 0 {
		return flat, nil
	}

	fills := make([]gen.RegionFill, 0, len(sc.Fills))
	for _, f := range sc.Fills {
		st, err := resolve(reg, f.Block, f.Meta)
		if err != nil {
			return nil, fmt.Errorf("fill: %w", err)
		}
		fills = append(fills, gen.RegionFill{
			Region: gen.Region{
				MinX: min(f.From[0], f.To[0]), MaxX: max(f.From[0], f.To[0]),
				MinY: min(f.From[1], f.To[1]), MaxY: max(f.From[1], f.To[1]),
				MinZ: min(f.From[2], f.To[2]), MaxZ: max(f.From[2], f.To[2]),
			},
			State: st,
		})
	}
	return &gen.Filled{Base: flat, Fills: fills}, nil
}
