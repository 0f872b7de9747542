// Package codec converts chunk light between the engine's packed values and
// the classic split layout: one nibble array for block light and one for sky
// light, two voxels per byte, even index in the low nibble.
package codec

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/OCharnyshevich/voxel-light/internal/world"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
	"github.com/OCharnyshevich/voxel-light/pkg/world/nbt"
)

// NibbleBytes is the size of one nibble array of a section.
const NibbleBytes = light.Volume / 2

// setNibble sets a 4-bit value at the given voxel index in a nibble array.
func setNibble(arr []byte, index int, val byte) {
	i := index / 2
	if index%2 == 0 {
		arr[i] = arr[i]&0xF0 | val&0x0F
	} else {
		arr[i] = arr[i]&0x0F | val<<4
	}
}

func nibble(arr []byte, index int) int {
	b := arr[index/2]
	if index%2 == 0 {
		return int(b & 0x0F)
	}
	return int(b >> 4)
}

// SplitSection returns the block and sky nibble arrays of a.
func SplitSection(a *light.Array) (block, sky []byte) {
	block = make([]byte, NibbleBytes)
	sky = make([]byte, NibbleBytes)
	for i, v := range a {
		setNibble(block, i, byte(v.Block()))
		setNibble(sky, i, byte(v.Sky()))
	}
	return block, sky
}

// JoinSection packs block and sky nibble arrays into a light array.
func JoinSection(block, sky []byte) (*light.Array, error) {
	if len(block) != NibbleBytes || len(sky) != NibbleBytes {
		return nil, fmt.Errorf("nibble arrays of %d and %d bytes, want %d", len(block), len(sky), NibbleBytes)
	}
	a := new(light.Array)
	for i := range a {
		a[i] = light.New(nibble(block, i), nibble(sky, i))
	}
	return a, nil
}

// ChunkLight is the stored light of one chunk.
type ChunkLight struct {
	Pos      world.ChunkPos
	Sections map[int]*light.Array // lit sections by index
	Heights  [256]int32           // index z*16 + x
}

// Capture copies the light and heightmap of c. Unlit sections are skipped.
func Capture(c *world.Chunk) ChunkLight {
	cl := ChunkLight{Pos: c.Pos, Sections: make(map[int]*light.Array)}
	for _, idx := range c.Sections() {
		if a := c.SectionLight(idx); a != nil {
			cl.Sections[idx] = a
		}
	}
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			cl.Heights[z<<4|x] = int32(c.Height(x, z))
		}
	}
	return cl
}

// Indices returns the stored section indices in ascending order.
func (cl ChunkLight) Indices() []int {
	out := make([]int, 0, len(cl.Sections))
	for idx := range cl.Sections {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Equal reports whether both hold the same sections, light and heights.
func (cl ChunkLight) Equal(o ChunkLight) bool {
	if cl.Pos != o.Pos || cl.Heights != o.Heights || len(cl.Sections) != len(o.Sections) {
		return false
	}
	for idx, a := range cl.Sections {
		if !a.Equal(o.Sections[idx]) {
			return false
		}
	}
	return true
}

// EncodeChunk encodes cl as an NBT chunk compound: a Level compound with
// xPos, zPos, one Sections entry per lit section carrying Y, BlockLight and
// SkyLight, and the sky HeightMap.
func EncodeChunk(cl ChunkLight) ([]byte, error) {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)

	w.BeginCompound("")
	w.BeginCompound("Level")
	w.WriteInt("xPos", int32(cl.Pos.X))
	w.WriteInt("zPos", int32(cl.Pos.Z))

	idxs := cl.Indices()
	w.BeginList("Sections", nbt.TagCompound, len(idxs))
	for _, idx := range idxs {
		block, sky := SplitSection(cl.Sections[idx])
		w.WriteTagByte("Y", byte(int8(idx)))
		w.WriteByteArray("BlockLight", block)
		w.WriteByteArray("SkyLight", sky)
		w.EndCompound()
	}
	w.WriteIntArray("HeightMap", cl.Heights[:])

	w.EndCompound() // Level
	w.EndCompound() // root

	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encode chunk %v: %w", cl.Pos, err)
	}
	return buf.Bytes(), nil
}

// DecodeChunk decodes the output of EncodeChunk.
func DecodeChunk(data []byte) (ChunkLight, error) {
	var cl ChunkLight
	_, root, err := nbt.Decode(bytes.NewReader(data))
	if err != nil {
		return cl, fmt.Errorf("decode chunk: %w", err)
	}
	level, ok := root.Compound("Level")
	if !ok {
		return cl, fmt.Errorf("decode chunk: missing Level")
	}
	x, okx := level.Int("xPos")
	z, okz := level.Int("zPos")
	if !okx || !okz {
		return cl, fmt.Errorf("decode chunk: missing position")
	}
	cl.Pos = world.ChunkPos{X: int(x), Z: int(z)}

	hm, ok := level.IntArray("HeightMap")
	if !ok || len(hm) != len(cl.Heights) {
		return cl, fmt.Errorf("decode chunk %v: bad HeightMap", cl.Pos)
	}
	copy(cl.Heights[:], hm)

	sections, _ := level.List("Sections")
	cl.Sections = make(map[int]*light.Array, len(sections))
	for i, e := range sections {
		s, ok := e.(nbt.Compound)
		if !ok {
			return cl, fmt.Errorf("decode chunk %v: section %d is %T", cl.Pos, i, e)
		}
		y, oky := s.Byte("Y")
		block, okb := s.ByteArray("BlockLight")
		sky, oks := s.ByteArray("SkyLight")
		if !oky || !okb || !oks {
			return cl, fmt.Errorf("decode chunk %v: section %d incomplete", cl.Pos, i)
		}
		a, err := JoinSection(block, sky)
		if err != nil {
			return cl, fmt.Errorf("decode chunk %v section %d: %w", cl.Pos, int8(y), err)
		}
		cl.Sections[int(int8(y))] = a
	}
	return cl, nil
}
