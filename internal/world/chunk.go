package world

import (
	"fmt"
	"sync"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
	"github.com/OCharnyshevich/voxel-light/pkg/world/gen"
)

// Chunk is one column of sections sharing a heightmap. All block and light
// data is guarded by the chunk's lock.
type Chunk struct {
	Pos ChunkPos

	mu         sync.RWMutex
	sections   [sectionSlots]*Section
	lo, hi     int // lowest and highest section index, valid when populated
	populated  bool
	heights    Heightmap
	table      *gamedata.LightTable
	neighbours *NeighbourTracker
}

func newChunk(pos ChunkPos, data *gen.ChunkData, table *gamedata.LightTable, nt *NeighbourTracker) *Chunk {
	c := &Chunk{
		Pos:        pos,
		heights:    newHeightmap(),
		table:      table,
		neighbours: nt,
	}
	if data == nil {
		return c
	}
	for i, src := range data.Sections {
		if src == nil {
			continue
		}
		s := c.addSection(gen.MinSection + i)
		for j, st := range src.Blocks {
			s.setBlock(j, st)
		}
	}
	c.heights.Recalculate(c)
	return c
}

// Light returns the packed light at p. ok is false while the voxel is unset:
// its section does not exist or has not been lit yet.
func (c *Chunk) Light(p BlockPos) (v light.Value, ok bool) {
	c.mustOwn(p)
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.section(p.Section())
	if s == nil || s.light == nil {
		return 0, false
	}
	return s.light.Get(p.Index()), true
}

// SetLight stores the packed light at p, creating the section's light array
// if needed.
func (c *Chunk) SetLight(p BlockPos, v light.Value) {
	c.mustOwn(p)
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.section(p.Section())
	if s == nil {
		s = c.addSection(p.Section())
	}
	if s.light == nil {
		c.lightSection(s)
	}
	s.light.Set(p.Index(), v)
}

// Block returns the block state at p.
func (c *Chunk) Block(p BlockPos) gamedata.State {
	c.mustOwn(p)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state(p)
}

// Height returns the sky surface of local column (x, z).
func (c *Chunk) Height(x, z int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.heights.Get(x, z)
}

// Sections returns the indices of the chunk's sections in ascending order.
func (c *Chunk) Sections() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sectionIndices()
}

// SectionLight returns a copy of the light of section idx, or nil when the
// section is absent or unlit.
func (c *Chunk) SectionLight(idx int) *light.Array {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s := c.section(idx); s != nil {
		return s.Light()
	}
	return nil
}

// ClearLight drops the light of every section. The chunk reads as unset
// until it is calculated again.
func (c *Chunk) ClearLight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.sections {
		if s != nil {
			s.light = nil
		}
	}
}

// Complete reports whether all eight lateral neighbours are loaded.
func (c *Chunk) Complete() bool {
	return c.neighbours.Complete(c.Pos)
}

func (c *Chunk) mustOwn(p BlockPos) { mustIn(c.Pos, p) }

func mustIn(pos ChunkPos, p BlockPos) {
	mustValid(p)
	if p.Chunk() != pos {
		panic(fmt.Sprintf("world: %v is not in chunk %v", p, pos))
	}
}

// The helpers below expect the caller to hold the chunk's lock.

func (c *Chunk) section(idx int) *Section {
	return c.sections[sectionSlot(idx)]
}

func (c *Chunk) addSection(idx int) *Section {
	s := newSection(idx)
	c.sections[sectionSlot(idx)] = s
	switch {
	case !c.populated:
		c.lo, c.hi, c.populated = idx, idx, true
	case idx < c.lo:
		c.lo = idx
	case idx > c.hi:
		c.hi = idx
	}
	return s
}

func (c *Chunk) sectionIndices() []int {
	var out []int
	for _, s := range c.sections {
		if s != nil {
			out = append(out, s.Y)
		}
	}
	return out
}

// underground reports whether p lies below the chunk's lowest section.
// Such voxels carry no light until a block write or arriving block light
// extends the chunk down to them. A chunk without sections is underground
// everywhere.
func (c *Chunk) underground(p BlockPos) bool {
	return !c.populated || p.Section() < c.lo
}

func (c *Chunk) state(p BlockPos) gamedata.State {
	s := c.section(p.Section())
	if s == nil {
		return 0
	}
	return s.blocks[p.Index()]
}

func (c *Chunk) props(p BlockPos) gamedata.LightProperties {
	return c.table.Props(c.state(p))
}

func (c *Chunk) direct(p BlockPos) bool {
	return p.Y >= c.heights.Get(p.X&0xF, p.Z&0xF)
}

// intrinsic is the level a voxel has on its own: its emission for block
// light, full sky for voxels at or above the surface.
func (c *Chunk) intrinsic(p BlockPos, ch light.Channel) int {
	if ch == light.Block {
		return c.props(p).Emission
	}
	if !c.underground(p) && c.direct(p) {
		return light.Max
	}
	return 0
}

// level returns the stored level, or the intrinsic level for voxels of
// absent and unlit sections.
func (c *Chunk) level(p BlockPos, ch light.Channel) int {
	s := c.section(p.Section())
	if s == nil || s.light == nil {
		return c.intrinsic(p, ch)
	}
	return s.light.Get(p.Index()).Get(ch)
}

// lightSection fills the section's light with intrinsic levels.
func (c *Chunk) lightSection(s *Section) {
	arr := new(light.Array)
	for y := 0; y < 16; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				i := light.Index(x, y, z)
				sky := 0
				if s.Y<<4+y >= c.heights.Get(x, z) {
					sky = light.Max
				}
				arr.Set(i, light.New(c.table.Props(s.blocks[i]).Emission, sky))
			}
		}
	}
	s.light = arr
}
