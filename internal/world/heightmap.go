package world

import (
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

// Heightmap records the sky surface of every column of a chunk: the lowest Y
// whose voxel still receives undecayed sky light from straight above. Voxels
// at or above it are lit by the sky directly.
type Heightmap struct {
	h [256]int32 // index = z*16 + x
}

func newHeightmap() Heightmap {
	var m Heightmap
	for i := range m.h {
		m.h[i] = HeightUnset
	}
	return m
}

// Get returns the surface height of column (x, z), or HeightUnset.
func (m *Heightmap) Get(x, z int) int {
	return int(m.h[z<<4|x])
}

// Set stores the surface height of column (x, z).
func (m *Heightmap) Set(x, z, h int) {
	m.h[z<<4|x] = int32(h)
}

// Recalculate rebuilds every column from the block data of c.
func (m *Heightmap) Recalculate(c *Chunk) {
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			m.Set(x, z, c.columnHeight(x, z))
		}
	}
}

// Update re-scans one column after a block write.
func (m *Heightmap) Update(c *Chunk, x, z int) (old, cur int) {
	old = m.Get(x, z)
	cur = c.columnHeight(x, z)
	m.Set(x, z, cur)
	return old, cur
}

// columnHeight scans column (x, z) top-down from the highest section.
//
// An opaque, filtering or top-covered state at Y puts the surface above it,
// at Y+1. A state open at the top but covered at the bottom receives direct
// sky itself, so the surface is Y.
func (c *Chunk) columnHeight(x, z int) int {
	for slot := sectionSlots - 1; slot >= 0; slot-- {
		s := c.sections[slot]
		if s == nil || s.Empty() {
			continue
		}
		for y := 15; y >= 0; y-- {
			p := c.table.Props(s.blocks[light.Index(x, y, z)])
			switch {
			case p.IsOpaque() || p.Class == gamedata.Filter || p.Full.Has(gamedata.Up):
				return s.Y<<4 + y + 1
			case p.Full.Has(gamedata.Down):
				return s.Y<<4 + y
			}
		}
	}
	return HeightUnset
}
