package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

const (
	// MinSection is the lowest section index of a chunk column.
	MinSection = -128
	// SectionCount is the number of section slots of a chunk column.
	SectionCount = 256
)

// Section holds block data for a 16×16×16 vertical slice of a chunk.
// Index = y*256 + z*16 + x.
type Section struct {
	Blocks [4096]gamedata.State
}

// ChunkData holds the block states of one chunk column, used to bulk-load a
// chunk into a world.
type ChunkData struct {
	Sections [SectionCount]*Section // nil = absent
}

// Generator produces chunk data for a chunk position.
type Generator interface {
	Generate(chunkX, chunkZ int) *ChunkData
}

func slot(idx int) int {
	if idx < MinSection || idx >= MinSection+SectionCount {
		panic(fmt.Sprintf("gen: section index %d out of range", idx))
	}
	return idx - MinSection
}

// Section returns the section at index idx, or nil when absent.
func (c *ChunkData) Section(idx int) *Section {
	return c.Sections[slot(idx)]
}

// EnsureSection creates the section at index idx if it is absent. An
// explicitly created section is loaded even when it holds only air.
func (c *ChunkData) EnsureSection(idx int) *Section {
	s := c.Sections[slot(idx)]
	if s == nil {
		s = &Section{}
		c.Sections[slot(idx)] = s
	}
	return s
}

// SetBlock sets a block state at local x, z in [0,16) and global y.
func (c *ChunkData) SetBlock(x, y, z int, state gamedata.State) {
	idx := y >> 4
	if c.Sections[slot(idx)] == nil {
		if state == 0 {
			return
		}
		c.EnsureSection(idx)
	}
	c.Sections[slot(idx)].Blocks[(y&0xF)*256+z*16+x] = state
}

// GetBlock returns the block state at local x, z and global y.
func (c *ChunkData) GetBlock(x, y, z int) gamedata.State {
	s := c.Sections[slot(y>>4)]
	if s == nil {
		return 0
	}
	return s.Blocks[(y&0xF)*256+z*16+x]
}
