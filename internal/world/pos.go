package world

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

const (
	// MinY is the lowest block Y of the world.
	MinY = -2048
	// MaxY is one past the highest block Y of the world.
	MaxY = 2047
	// MaxXZ bounds |X| and |Z| of a block position.
	MaxXZ = 30_000_000

	// HeightUnset is the heightmap value of a column without any
	// sky-occluding state.
	HeightUnset = MinY - 1

	minSection   = MinY >> 4
	maxSection   = (MaxY - 1) >> 4
	sectionSlots = maxSection - minSection + 1
)

// BlockPos is a global voxel position.
type BlockPos struct {
	X, Y, Z int
}

// Valid reports whether p lies inside the world bounds.
func (p BlockPos) Valid() bool {
	return p.Y >= MinY && p.Y < MaxY &&
		p.X >= -MaxXZ && p.X <= MaxXZ &&
		p.Z >= -MaxXZ && p.Z <= MaxXZ
}

// Chunk returns the position of the chunk column holding p.
func (p BlockPos) Chunk() ChunkPos {
	return ChunkPos{X: p.X >> 4, Z: p.Z >> 4}
}

// Section returns the section index of p.
func (p BlockPos) Section() int { return p.Y >> 4 }

// Index returns the in-section array index of p.
func (p BlockPos) Index() int {
	return light.Index(p.X&0xF, p.Y&0xF, p.Z&0xF)
}

// Offset returns the neighbour of p across face f.
func (p BlockPos) Offset(f gamedata.Face) BlockPos {
	dx, dy, dz := f.Offset()
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func mustValid(p BlockPos) {
	if !p.Valid() {
		panic(fmt.Sprintf("world: block position %v outside the world", p))
	}
}

// ChunkPos identifies a chunk column by its X and Z coordinates.
type ChunkPos struct {
	X, Z int
}

// Offset returns the chunk position moved by dx, dz.
func (c ChunkPos) Offset(dx, dz int) ChunkPos {
	return ChunkPos{X: c.X + dx, Z: c.Z + dz}
}

// Block returns the global position of local coordinates in the chunk.
func (c ChunkPos) Block(x, y, z int) BlockPos {
	return BlockPos{X: c.X<<4 | x, Y: y, Z: c.Z<<4 | z}
}

func (c ChunkPos) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Z)
}

func sectionSlot(idx int) int {
	if idx < minSection || idx > maxSection {
		panic(fmt.Sprintf("world: section index %d outside [%d,%d]", idx, minSection, maxSection))
	}
	return idx - minSection
}
