package world

import (
	"sort"
	"sync"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

// lateralFaces are the faces that cross into another chunk.
var lateralFaces = [...]gamedata.Face{gamedata.North, gamedata.South, gamedata.West, gamedata.East}

// faceChunk returns the chunk across lateral face f of pos.
func faceChunk(pos ChunkPos, f gamedata.Face) ChunkPos {
	dx, _, dz := f.Offset()
	return pos.Offset(dx, dz)
}

// NeighbourTracker records which chunks are loaded and which propagation
// crossings are waiting for a chunk to arrive. It holds positions only.
type NeighbourTracker struct {
	mu       sync.Mutex
	loaded   map[ChunkPos]struct{}
	deferred map[ChunkPos]map[ChunkPos]struct{} // target -> chunks that tried to light it
	stale    map[ChunkPos]map[ChunkPos]struct{} // target -> chunks lit by its previous data
}

// NewNeighbourTracker creates an empty tracker.
func NewNeighbourTracker() *NeighbourTracker {
	return &NeighbourTracker{
		loaded:   make(map[ChunkPos]struct{}),
		deferred: make(map[ChunkPos]map[ChunkPos]struct{}),
		stale:    make(map[ChunkPos]map[ChunkPos]struct{}),
	}
}

// Neighbours returns the eight lateral neighbours of pos.
func (t *NeighbourTracker) Neighbours(pos ChunkPos) [8]ChunkPos {
	var out [8]ChunkPos
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			out[i] = pos.Offset(dx, dz)
			i++
		}
	}
	return out
}

// Loaded reports whether pos is loaded.
func (t *NeighbourTracker) Loaded(pos ChunkPos) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.loaded[pos]
	return ok
}

// Complete reports whether pos and all eight of its neighbours are loaded.
func (t *NeighbourTracker) Complete(pos ChunkPos) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete(pos)
}

func (t *NeighbourTracker) complete(pos ChunkPos) bool {
	if _, ok := t.loaded[pos]; !ok {
		return false
	}
	for _, n := range t.Neighbours(pos) {
		if _, ok := t.loaded[n]; !ok {
			return false
		}
	}
	return true
}

// Defer records that light from src could not cross into the unloaded
// chunk dst. The ledger is bookkeeping for callers and logs: loading dst
// re-seeds the borders of every loaded face neighbour, which replays these
// crossings along with any the ledger never saw, such as those of a chunk
// loaded again after an unload.
func (t *NeighbourTracker) Defer(src, dst ChunkPos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.deferred[dst]
	if set == nil {
		set = make(map[ChunkPos]struct{})
		t.deferred[dst] = set
	}
	set[src] = struct{}{}
}

// Deferred returns the chunks waiting to light dst. It does not drive
// propagation.
func (t *NeighbourTracker) Deferred(dst ChunkPos) []ChunkPos {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.deferred[dst])
}

// markLoaded records pos as loaded and hands back the loaded chunks whose
// crossings into pos were deferred and those still holding light from a
// previous copy of pos. Both lists are cleared.
func (t *NeighbourTracker) markLoaded(pos ChunkPos) (deferred, stale []ChunkPos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded[pos] = struct{}{}
	for src := range t.deferred[pos] {
		if _, ok := t.loaded[src]; ok {
			deferred = append(deferred, src)
		}
	}
	for n := range t.stale[pos] {
		if _, ok := t.loaded[n]; ok {
			stale = append(stale, n)
		}
	}
	delete(t.deferred, pos)
	delete(t.stale, pos)
	sortPositions(deferred)
	sortPositions(stale)
	return deferred, stale
}

// markUnloaded forgets pos. Its loaded face neighbours are remembered as
// holding light that came from it.
func (t *NeighbourTracker) markUnloaded(pos ChunkPos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.loaded, pos)
	for _, f := range lateralFaces {
		n := faceChunk(pos, f)
		if _, ok := t.loaded[n]; !ok {
			continue
		}
		set := t.stale[pos]
		if set == nil {
			set = make(map[ChunkPos]struct{})
			t.stale[pos] = set
		}
		set[n] = struct{}{}
	}
	for _, set := range t.deferred {
		delete(set, pos)
	}
}

// completeAround returns which of pos and its eight neighbours are complete.
func (t *NeighbourTracker) completeAround(pos ChunkPos) map[ChunkPos]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[ChunkPos]bool{pos: t.complete(pos)}
	for _, n := range t.Neighbours(pos) {
		out[n] = t.complete(n)
	}
	return out
}

func sortedKeys(set map[ChunkPos]struct{}) []ChunkPos {
	out := make([]ChunkPos, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []ChunkPos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].X != ps[j].X {
			return ps[i].X < ps[j].X
		}
		return ps[i].Z < ps[j].Z
	})
}
