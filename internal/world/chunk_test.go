package world

import (
	"testing"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
	"github.com/OCharnyshevich/voxel-light/pkg/world/gen"
)

func TestBlockPosCoordinates(t *testing.T) {
	tests := []struct {
		pos     BlockPos
		chunk   ChunkPos
		section int
		index   int
	}{
		{BlockPos{0, 0, 0}, ChunkPos{0, 0}, 0, 0},
		{BlockPos{15, 15, 15}, ChunkPos{0, 0}, 0, 4095},
		{BlockPos{-1, -1, -1}, ChunkPos{-1, -1}, -1, 4095},
		{BlockPos{17, 33, -17}, ChunkPos{1, -2}, 2, 1<<8 | 15<<4 | 1},
		{BlockPos{0, MinY, 0}, ChunkPos{0, 0}, -128, 0},
		{BlockPos{0, MaxY - 1, 0}, ChunkPos{0, 0}, 127, 14 << 8},
	}
	for _, tt := range tests {
		if got := tt.pos.Chunk(); got != tt.chunk {
			t.Errorf("%v.Chunk() = %v, want %v", tt.pos, got, tt.chunk)
		}
		if got := tt.pos.Section(); got != tt.section {
			t.Errorf("%v.Section() = %d, want %d", tt.pos, got, tt.section)
		}
		if got := tt.pos.Index(); got != tt.index {
			t.Errorf("%v.Index() = %d, want %d", tt.pos, got, tt.index)
		}
	}
}

func TestBlockPosValid(t *testing.T) {
	tests := []struct {
		pos  BlockPos
		want bool
	}{
		{BlockPos{0, 0, 0}, true},
		{BlockPos{MaxXZ, MinY, -MaxXZ}, true},
		{BlockPos{0, MaxY - 1, 0}, true},
		{BlockPos{0, MaxY, 0}, false},
		{BlockPos{0, MinY - 1, 0}, false},
		{BlockPos{MaxXZ + 1, 0, 0}, false},
		{BlockPos{0, 0, -MaxXZ - 1}, false},
	}
	for _, tt := range tests {
		if got := tt.pos.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestChunkPosBlock(t *testing.T) {
	for _, p := range []BlockPos{{-1, 5, -16}, {31, -40, 7}, {-17, 0, 0}} {
		c := p.Chunk()
		if got := c.Block(p.X&0xF, p.Y, p.Z&0xF); got != p {
			t.Errorf("%v.Block(local of %v) = %v", c, p, got)
		}
	}
}

func TestSectionBlockCount(t *testing.T) {
	s := newSection(0)
	if !s.Empty() {
		t.Fatal("new section is not empty")
	}
	s.setBlock(5, stone)
	s.setBlock(5, glass)
	s.setBlock(6, stone)
	if s.nonAir != 2 {
		t.Errorf("nonAir = %d, want 2", s.nonAir)
	}
	if old := s.setBlock(5, air); old != glass {
		t.Errorf("setBlock returned %d, want %d", old, glass)
	}
	s.setBlock(6, air)
	if !s.Empty() {
		t.Error("section not empty after clearing every block")
	}
	if s.Lit() || s.Light() != nil {
		t.Error("unlit section reports light")
	}
}

func TestSectionSolid(t *testing.T) {
	table := testTable(t)
	s := newSection(0)
	forFace(gamedata.East, func(x, y, z int) bool {
		s.setBlock(light.Index(x, y, z), stone)
		return true
	})
	if !s.Solid(table, gamedata.East) {
		t.Error("Solid(East) = false on a stone face")
	}
	if s.Solid(table, gamedata.West) {
		t.Error("Solid(West) = true on an empty face")
	}
	for i := range s.blocks {
		s.setBlock(i, stone)
	}
	s.setBlock(light.Index(0, 3, 3), glass)
	if !s.Solid(table, gamedata.East) {
		t.Error("Solid(East) = false on a stone face")
	}
	if s.Solid(table, gamedata.West) {
		t.Error("Solid(West) = true with glass on the face")
	}
}

func TestForFaceVisitsPlane(t *testing.T) {
	for _, f := range gamedata.Faces {
		seen := make(map[int]bool)
		forFace(f, func(x, y, z int) bool {
			var coord int
			switch f {
			case gamedata.Down, gamedata.Up:
				coord = y
			case gamedata.North, gamedata.South:
				coord = z
			default:
				coord = x
			}
			dx, dy, dz := f.Offset()
			want := 0
			if dx+dy+dz > 0 {
				want = 15
			}
			if coord != want {
				t.Errorf("forFace(%v) visited (%d,%d,%d) off the face", f, x, y, z)
			}
			seen[light.Index(x, y, z)] = true
			return true
		})
		if len(seen) != 256 {
			t.Errorf("forFace(%v) visited %d voxels, want 256", f, len(seen))
		}
	}
}

func TestChunkLightAccess(t *testing.T) {
	table := testTable(t)
	data := &gen.ChunkData{}
	data.EnsureSection(0)
	c := newChunk(ChunkPos{X: 2, Z: -1}, data, table, NewNeighbourTracker())

	p := BlockPos{40, 3, -10}
	if _, ok := c.Light(p); ok {
		t.Error("Light before lighting reported ok")
	}
	c.SetLight(p, 0x5A)
	if v, ok := c.Light(p); !ok || v != 0x5A {
		t.Errorf("Light%v = %v, %v, want 0x5A, true", p, v, ok)
	}
	if got := c.SectionLight(0); got == nil || got.Get(p.Index()) != 0x5A {
		t.Error("SectionLight(0) does not hold the stored value")
	}

	up := BlockPos{40, 100, -10}
	c.SetLight(up, 0x10)
	if got := c.Sections(); len(got) != 2 || got[1] != 6 {
		t.Errorf("Sections() = %v, want [0 6]", got)
	}

	c.ClearLight()
	if _, ok := c.Light(p); ok {
		t.Error("Light after ClearLight reported ok")
	}
	if got := c.SectionLight(0); got != nil {
		t.Error("SectionLight after ClearLight is not nil")
	}
}

func TestChunkRejectsForeignPositions(t *testing.T) {
	c := newChunk(ChunkPos{}, nil, testTable(t), NewNeighbourTracker())
	defer func() {
		if recover() == nil {
			t.Error("Light of a foreign position did not panic")
		}
	}()
	c.Light(BlockPos{16, 0, 0})
}

func TestNewChunkCopiesData(t *testing.T) {
	data := gen.NewFlatGenerator(gen.Layer{State: stone, MinY: -20, MaxY: -18}).Generate(0, 0)
	c := newChunk(ChunkPos{}, data, testTable(t), NewNeighbourTracker())
	data.SetBlock(0, -20, 0, air)

	if got := c.Block(BlockPos{0, -20, 0}); got != stone {
		t.Errorf("Block = %d, want %d", got, stone)
	}
	if got := c.Sections(); len(got) != 1 || got[0] != -2 {
		t.Errorf("Sections() = %v, want [-2]", got)
	}
	if got := c.Height(5, 5); got != -17 {
		t.Errorf("Height(5,5) = %d, want -17", got)
	}
	if !c.underground(BlockPos{0, -33, 0}) || c.underground(BlockPos{0, -32, 0}) {
		t.Error("underground boundary is not the lowest section")
	}
}

func TestNeighbourTracker(t *testing.T) {
	nt := NewNeighbourTracker()
	center := ChunkPos{X: 3, Z: -2}

	ns := nt.Neighbours(center)
	seen := make(map[ChunkPos]bool)
	for _, n := range ns {
		dx, dz := n.X-center.X, n.Z-center.Z
		if dx < -1 || dx > 1 || dz < -1 || dz > 1 || n == center {
			t.Errorf("Neighbours contains %v", n)
		}
		seen[n] = true
	}
	if len(seen) != 8 {
		t.Errorf("Neighbours has %d distinct positions, want 8", len(seen))
	}

	nt.markLoaded(center)
	if nt.Complete(center) {
		t.Error("Complete with no neighbours loaded")
	}
	for i, n := range ns {
		nt.markLoaded(n)
		if i < 7 && nt.Complete(center) {
			t.Errorf("Complete after %d neighbours", i+1)
		}
	}
	if !nt.Complete(center) {
		t.Error("Complete = false with every neighbour loaded")
	}
	if !nt.Loaded(ns[0]) {
		t.Errorf("Loaded(%v) = false", ns[0])
	}

	nt.markUnloaded(ns[3])
	if nt.Complete(center) || nt.Loaded(ns[3]) {
		t.Error("unloading a neighbour kept the chunk complete")
	}
}

func TestNeighbourTrackerDeferred(t *testing.T) {
	nt := NewNeighbourTracker()
	a, b, target := ChunkPos{X: 0}, ChunkPos{X: 2}, ChunkPos{X: 1}
	nt.markLoaded(a)
	nt.markLoaded(b)
	nt.Defer(b, target)
	nt.Defer(a, target)
	nt.Defer(a, target)

	if got := nt.Deferred(target); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Deferred = %v, want [%v %v]", got, a, b)
	}

	nt.markUnloaded(b)
	deferred, stale := nt.markLoaded(target)
	if len(deferred) != 1 || deferred[0] != a {
		t.Errorf("markLoaded deferred = %v, want [%v]", deferred, a)
	}
	if len(stale) != 0 {
		t.Errorf("markLoaded stale = %v, want none", stale)
	}
	if got := nt.Deferred(target); len(got) != 0 {
		t.Errorf("Deferred after load = %v", got)
	}

	nt.markUnloaded(target)
	_, stale = nt.markLoaded(target)
	if len(stale) != 1 || stale[0] != a {
		t.Errorf("stale after reload = %v, want [%v]", stale, a)
	}
}

func TestCauseString(t *testing.T) {
	tests := []struct {
		c    Cause
		want string
	}{
		{CauseInitial, "initial"},
		{CauseBlockChange, "block_change"},
		{CausePropagation, "propagation"},
		{Cause(9), "cause(9)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Cause(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestEventsFanOut(t *testing.T) {
	e := newEvents()
	var a, b []Event
	ida := e.Subscribe(func(ev Event) { a = append(a, ev) })
	e.Subscribe(func(ev Event) { b = append(b, ev) })

	e.publish(ChunkPos{X: 1}, []int{0, 3}, CausePropagation)
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("got %d and %d events, want 3 each", len(a), len(b))
	}
	if su, ok := a[1].(SectionUpdate); !ok || su.Section != 3 || su.Cause != CausePropagation {
		t.Errorf("a[1] = %+v, want section 3 propagation update", a[1])
	}

	e.Unsubscribe(ida)
	e.Unsubscribe(ida)
	e.publish(ChunkPos{}, []int{1}, CauseInitial)
	e.publish(ChunkPos{}, nil, CauseInitial)
	if len(a) != 3 || len(b) != 5 {
		t.Errorf("after Unsubscribe got %d and %d events, want 3 and 5", len(a), len(b))
	}
}
