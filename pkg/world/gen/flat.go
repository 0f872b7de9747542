package gen

import "github.com/OCharnyshevich/voxel-light/pkg/gamedata"

// Layer is a horizontal slab of one block state, from MinY to MaxY inclusive.
type Layer struct {
	State      gamedata.State
	MinY, MaxY int
}

// FlatGenerator generates identical layered chunks, optionally padded with
// explicit empty sections.
type FlatGenerator struct {
	layers []Layer
	lo, hi int // section range kept present, hi < lo disables it
}

// NewFlatGenerator creates a FlatGenerator with the given layers.
func NewFlatGenerator(layers ...Layer) *FlatGenerator {
	return &FlatGenerator{layers: layers, lo: 0, hi: -1}
}

// WithSections makes every generated chunk carry the sections lo..hi even
// when they are empty.
func (g *FlatGenerator) WithSections(lo, hi int) *FlatGenerator {
	g.lo, g.hi = lo, hi
	return g
}

func (g *FlatGenerator) Generate(_, _ int) *ChunkData {
	c := &ChunkData{}
	for idx := g.lo; idx <= g.hi; idx++ {
		c.EnsureSection(idx)
	}
	for _, l := range g.layers {
		for y := l.MinY; y <= l.MaxY; y++ {
			for x := 0; x < 16; x++ {
				for z := 0; z < 16; z++ {
					c.SetBlock(x, y, z, l.State)
				}
			}
		}
	}
	return c
}
