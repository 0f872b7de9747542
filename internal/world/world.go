package world

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"go.uber.org/atomic"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
	"github.com/OCharnyshevich/voxel-light/pkg/world/gen"
)

// ErrNotLoaded is returned for operations on a chunk that is not loaded.
var ErrNotLoaded = errors.New("chunk not loaded")

// Options configures a World.
type Options struct {
	Logger  *slog.Logger
	Workers int // CalculateAll pool size, runtime.NumCPU() when zero
}

// Stats counts engine work since the world was created.
type Stats struct {
	Passes  int64 // chunk queue drains
	Raised  int64 // voxel levels raised
	Lowered int64 // voxel levels lowered
}

type counters struct {
	passes, raised, lowered atomic.Int64
}

// World tracks loaded chunks and keeps their light converged as blocks change
// and chunks come and go.
type World struct {
	log     *slog.Logger
	table   *gamedata.LightTable
	workers int

	mu     sync.RWMutex
	chunks map[ChunkPos]*Chunk

	// writer admits one light update at a time. Chunk locks are only taken
	// while it is held, one at a time.
	writer sync.Mutex

	neighbours *NeighbourTracker
	stats      counters

	Events *Events
}

// NewWorld creates an empty World lighting blocks with table.
func NewWorld(table *gamedata.LightTable, opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &World{
		log:        opts.Logger,
		table:      table,
		workers:    opts.Workers,
		chunks:     make(map[ChunkPos]*Chunk),
		neighbours: NewNeighbourTracker(),
		Events:     newEvents(),
	}
}

func (w *World) chunk(pos ChunkPos) *Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[pos]
}

// Chunk returns the loaded chunk at pos.
func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	c := w.chunk(pos)
	return c, c != nil
}

// Chunks returns the positions of every loaded chunk, ordered by X then Z.
func (w *World) Chunks() []ChunkPos {
	w.mu.RLock()
	out := make([]ChunkPos, 0, len(w.chunks))
	for pos := range w.chunks {
		out = append(out, pos)
	}
	w.mu.RUnlock()
	sortPositions(out)
	return out
}

// Neighbours returns the world's neighbour tracker.
func (w *World) Neighbours() *NeighbourTracker {
	return w.neighbours
}

// Light returns the packed light at pos. ok is false when the chunk is not
// loaded or the voxel is unset.
func (w *World) Light(pos BlockPos) (light.Value, bool) {
	mustValid(pos)
	c := w.chunk(pos.Chunk())
	if c == nil {
		return 0, false
	}
	return c.Light(pos)
}

// Height returns the sky surface of column (x, z). ok is false when the
// chunk is not loaded.
func (w *World) Height(x, z int) (int, bool) {
	c := w.chunk(ChunkPos{X: x >> 4, Z: z >> 4})
	if c == nil {
		return HeightUnset, false
	}
	return c.Height(x&0xF, z&0xF), true
}

// Block returns the block state at pos.
func (w *World) Block(pos BlockPos) (gamedata.State, bool) {
	mustValid(pos)
	c := w.chunk(pos.Chunk())
	if c == nil {
		return 0, false
	}
	return c.Block(pos), true
}

// Stats returns the engine counters.
func (w *World) Stats() Stats {
	return Stats{
		Passes:  w.stats.passes.Load(),
		Raised:  w.stats.raised.Load(),
		Lowered: w.stats.lowered.Load(),
	}
}

// Load attaches chunk data at pos and lights it. Light that neighbours
// could not pass into pos earlier is spread again, and chunks that become
// complete publish their initial light. Loading over a loaded chunk replaces
// it.
func (w *World) Load(pos ChunkPos, data *gen.ChunkData) {
	c := newChunk(pos, data, w.table, w.neighbours)

	w.writer.Lock()
	before := w.neighbours.completeAround(pos)

	w.mu.Lock()
	_, replaced := w.chunks[pos]
	w.chunks[pos] = c
	w.mu.Unlock()

	// relight seeds every loaded face neighbour's border, deferred or not.
	deferred, stale := w.neighbours.markLoaded(pos)
	if replaced {
		stale = w.loadedFaceNeighbours(pos)
	}

	p := newPropagation(w)
	p.relight(c, stale)
	p.run()
	changed := p.changed()
	after := w.neighbours.completeAround(pos)
	w.writer.Unlock()

	w.log.Debug("chunk loaded",
		"chunk", pos,
		"sections", len(c.Sections()),
		"replaced", replaced,
		"deferred", len(deferred),
	)

	var initial []ChunkPos
	for cp, ok := range after {
		if ok && !before[cp] {
			initial = append(initial, cp)
		}
	}
	sortPositions(initial)
	w.emit(changed, initial, func(cp ChunkPos) Cause {
		if cp == pos {
			return CauseInitial
		}
		return CausePropagation
	})
}

// Unload detaches the chunk at pos. Neighbours keep their light but are no
// longer complete. It reports whether a chunk was loaded.
func (w *World) Unload(pos ChunkPos) bool {
	w.writer.Lock()
	defer w.writer.Unlock()

	w.mu.Lock()
	_, ok := w.chunks[pos]
	delete(w.chunks, pos)
	w.mu.Unlock()
	if !ok {
		return false
	}
	w.neighbours.markUnloaded(pos)
	w.log.Debug("chunk unloaded", "chunk", pos)
	return true
}

func (w *World) loadedFaceNeighbours(pos ChunkPos) []ChunkPos {
	var out []ChunkPos
	for _, f := range lateralFaces {
		if n := faceChunk(pos, f); w.chunk(n) != nil {
			out = append(out, n)
		}
	}
	return out
}

// emit publishes light updates once every lock is released. Chunks in
// initial publish all their sections; other changed chunks publish only when
// complete.
func (w *World) emit(changed map[ChunkPos][]int, initial []ChunkPos, cause func(ChunkPos) Cause) {
	done := make(map[ChunkPos]bool, len(initial))
	for _, cp := range initial {
		c := w.chunk(cp)
		if c == nil {
			continue
		}
		w.Events.publish(cp, c.Sections(), CauseInitial)
		done[cp] = true
	}

	keys := make([]ChunkPos, 0, len(changed))
	for cp := range changed {
		keys = append(keys, cp)
	}
	sortPositions(keys)
	for _, cp := range keys {
		if done[cp] || !w.neighbours.Complete(cp) {
			continue
		}
		w.Events.publish(cp, changed[cp], cause(cp))
	}
}
