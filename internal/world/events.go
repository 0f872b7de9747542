package world

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Cause tells why light changed.
type Cause uint8

const (
	// CauseInitial marks the first converged light of a chunk, after it loads
	// with all its neighbours present or after a full recompute.
	CauseInitial Cause = iota
	// CauseBlockChange marks light changed by a block write in the chunk.
	CauseBlockChange
	// CausePropagation marks light that reached the chunk from elsewhere.
	CausePropagation
)

func (c Cause) String() string {
	switch c {
	case CauseInitial:
		return "initial"
	case CauseBlockChange:
		return "block_change"
	case CausePropagation:
		return "propagation"
	default:
		return fmt.Sprintf("cause(%d)", uint8(c))
	}
}

// Event is a light update notification: a SectionUpdate or a ChunkUpdate.
type Event interface {
	event()
}

// SectionUpdate reports that the light of one section changed.
type SectionUpdate struct {
	Chunk   ChunkPos
	Section int
	Cause   Cause
}

// ChunkUpdate aggregates the section updates of one chunk.
type ChunkUpdate struct {
	Chunk    ChunkPos
	Sections []int
	Cause    Cause
}

func (SectionUpdate) event() {}
func (ChunkUpdate) event()   {}

// Events fans light updates out to subscribers. Handlers run on the
// goroutine that changed the light, after every chunk lock is released.
type Events struct {
	mu    sync.RWMutex
	subs  map[uuid.UUID]func(Event)
	order []uuid.UUID
}

func newEvents() *Events {
	return &Events{subs: make(map[uuid.UUID]func(Event))}
}

// Subscribe registers fn and returns its subscription id.
func (e *Events) Subscribe(fn func(Event)) uuid.UUID {
	id := uuid.New()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[id] = fn
	e.order = append(e.order, id)
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (e *Events) Unsubscribe(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subs[id]; !ok {
		return
	}
	delete(e.subs, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// publish sends one SectionUpdate per section followed by the ChunkUpdate.
func (e *Events) publish(pos ChunkPos, sections []int, cause Cause) {
	if len(sections) == 0 {
		return
	}
	e.mu.RLock()
	fns := make([]func(Event), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.subs[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		for _, s := range sections {
			fn(SectionUpdate{Chunk: pos, Section: s, Cause: cause})
		}
		fn(ChunkUpdate{Chunk: pos, Sections: append([]int(nil), sections...), Cause: cause})
	}
}
