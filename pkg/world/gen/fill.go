package gen

import "github.com/OCharnyshevich/voxel-light/pkg/gamedata"

// Region is an axis-aligned box of global block coordinates, bounds inclusive.
type Region struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// Fill writes state into the part of r that falls inside chunk (chunkX,
// chunkZ). It reports whether any voxel was written.
func Fill(c *ChunkData, chunkX, chunkZ int, r Region, state gamedata.State) bool {
	x0, x1 := max(r.MinX, chunkX*16), min(r.MaxX, chunkX*16+15)
	z0, z1 := max(r.MinZ, chunkZ*16), min(r.MaxZ, chunkZ*16+15)
	if x0 > x1 || z0 > z1 || r.MinY > r.MaxY {
		return false
	}
	for y := r.MinY; y <= r.MaxY; y++ {
		if state == 0 {
			c.EnsureSection(y >> 4)
		}
		for x := x0; x <= x1; x++ {
			for z := z0; z <= z1; z++ {
				c.SetBlock(x&0xF, y, z&0xF, state)
			}
		}
	}
	return true
}

// Filled wraps a Generator and applies region fills to every chunk it
// produces.
type Filled struct {
	Base  Generator
	Fills []RegionFill
}

// RegionFill is one region written with a block state.
type RegionFill struct {
	Region Region
	State  gamedata.State
}

func (f *Filled) Generate(chunkX, chunkZ int) *ChunkData {
	c := f.Base.Generate(chunkX, chunkZ)
	for _, rf := range f.Fills {
		Fill(c, chunkX, chunkZ, rf.Region, rf.State)
	}
	return c
}
