package world

import (
	"github.com/alitto/pond/v2"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

// BlockChange is a single block write.
type BlockChange struct {
	Pos   BlockPos
	State gamedata.State
}

// Apply writes the changes into the chunk at pos and updates the light they
// affect. Every change must lie inside the chunk. An empty change set does
// nothing.
func (w *World) Apply(pos ChunkPos, changes []BlockChange) error {
	if len(changes) == 0 {
		return nil
	}
	for _, ch := range changes {
		mustIn(pos, ch.Pos)
	}

	w.writer.Lock()
	c := w.chunk(pos)
	if c == nil {
		w.writer.Unlock()
		return ErrNotLoaded
	}

	p := newPropagation(w)
	c.mu.Lock()
	written := p.applyBlocks(c, changes)
	c.mu.Unlock()

	p.run()
	changed := p.changed()
	w.writer.Unlock()

	w.log.Debug("block changes applied",
		"chunk", pos,
		"changes", len(changes),
		"written", written,
		"chunks_changed", len(changed),
	)

	w.emit(changed, nil, func(cp ChunkPos) Cause {
		if cp == pos {
			return CauseBlockChange
		}
		return CausePropagation
	})
	return nil
}

// SetBlock writes a single block.
func (w *World) SetBlock(pos BlockPos, state gamedata.State) error {
	mustValid(pos)
	return w.Apply(pos.Chunk(), []BlockChange{{Pos: pos, State: state}})
}

// Calculate recomputes the light of the chunk at pos from scratch. Light it
// had passed to its neighbours is withdrawn and spread again.
func (w *World) Calculate(pos ChunkPos) error {
	w.writer.Lock()
	c := w.chunk(pos)
	if c == nil {
		w.writer.Unlock()
		return ErrNotLoaded
	}

	p := newPropagation(w)
	p.relight(c, w.loadedFaceNeighbours(pos))
	p.run()
	changed := p.changed()
	w.writer.Unlock()

	w.log.Debug("chunk calculated", "chunk", pos, "chunks_changed", len(changed))

	w.emit(changed, nil, func(cp ChunkPos) Cause {
		if cp == pos {
			return CauseInitial
		}
		return CausePropagation
	})
	return nil
}

// CalculateAll recomputes every loaded chunk. Each chunk is first converged
// on its own in parallel, then light crossing chunk borders is spread.
func (w *World) CalculateAll() {
	w.writer.Lock()

	positions := w.Chunks()
	chunks := make([]*Chunk, 0, len(positions))
	for _, pos := range positions {
		chunks = append(chunks, w.chunk(pos))
	}

	pool := pond.NewResultPool[*propagation](w.workers)
	group := pool.NewGroup()
	for _, c := range chunks {
		group.Submit(func() *propagation {
			p := newPropagation(w)
			c.mu.Lock()
			defer c.mu.Unlock()
			p.relightLocal(c)
			p.drainLocal(c)
			return p
		})
	}
	parts, err := group.Wait()
	pool.StopAndWait()
	if err != nil {
		// Only a panicking task fails the group.
		w.writer.Unlock()
		panic(err)
	}

	p := newPropagation(w)
	for _, part := range parts {
		p.merge(part)
	}
	for _, c := range chunks {
		p.seedBorders(c, nil)
	}
	p.run()
	changed := p.changed()
	w.writer.Unlock()

	w.log.Info("world calculated",
		"chunks", len(chunks),
		"chunks_changed", len(changed),
		"workers", w.workers,
	)

	w.emit(changed, nil, func(ChunkPos) Cause { return CauseInitial })
}

// applyBlocks writes the changes and seeds the passes that bring the light
// back in line. It returns how many voxels actually changed. The caller holds
// c's lock.
func (p *propagation) applyBlocks(c *Chunk, changes []BlockChange) int {
	type column struct{ x, z int }
	var (
		columns = make(map[column]struct{})
		written []BlockPos
	)
	for _, ch := range changes {
		idx := ch.Pos.Section()
		s := c.section(idx)
		if s == nil {
			if ch.State == 0 {
				continue
			}
			if c.underground(ch.Pos) {
				p.extend(c, idx)
			} else {
				p.materialize(c, idx)
			}
			s = c.section(idx)
		}
		if s.setBlock(ch.Pos.Index(), ch.State) == ch.State {
			continue
		}
		columns[column{ch.Pos.X & 0xF, ch.Pos.Z & 0xF}] = struct{}{}
		written = append(written, ch.Pos)
	}

	for col := range columns {
		p.updateColumn(c, col.x, col.z)
	}

	for _, pos := range written {
		for _, ch := range light.Channels {
			p.reset(pos, ch)
			for _, f := range gamedata.Faces {
				if n := pos.Offset(f); n.Valid() {
					p.seed(n, ch)
				}
			}
		}
	}
	return len(written)
}

// updateColumn re-scans the surface of a column and fixes the direct sky of
// the voxels between its old and new height.
func (p *propagation) updateColumn(c *Chunk, x, z int) {
	old, cur := c.heights.Update(c, x, z)
	if old == cur || !c.populated {
		return
	}
	from := max(min(old, cur), c.lo<<4)
	to := min(max(old, cur), (c.hi+1)<<4)
	for y := from; y < to; y++ {
		pos := c.Pos.Block(x, y, z)
		s := c.section(pos.Section())
		lit := s != nil && s.light != nil

		was := 0
		switch {
		case lit:
			was = s.light.Get(pos.Index()).Sky()
		case y >= old:
			was = light.Max
		}
		now := c.intrinsic(pos, light.Sky)
		if lit && was != now {
			p.set(c, pos, light.Sky, now)
		}
		if was > now {
			p.pushDec(entry{pos: pos, level: int8(was), ch: light.Sky, kind: kindVoxel})
		}
		p.seed(pos, light.Sky)
	}
}

// extend grows the chunk's light domain down to section idx. The sections
// between idx and the old lowest section held no light before, so they are
// created, lit and opened to the light around them.
func (p *propagation) extend(c *Chunk, idx int) {
	top := idx
	if c.populated {
		top = c.lo - 1
	}
	for y := idx; y <= top; y++ {
		c.addSection(y)
	}
	for y := idx; y <= top; y++ {
		s := c.section(y)
		p.touch(c, s)
		c.lightSection(s)
		p.seedSky(c, y)
		p.seedAround(c, y)
	}
}

// seedAround seeds the voxels just outside every face of section idx so
// their light enters it.
func (p *propagation) seedAround(c *Chunk, idx int) {
	for _, f := range gamedata.Faces {
		forFace(f, func(x, y, z int) bool {
			n := c.Pos.Block(x, idx<<4+y, z).Offset(f)
			if n.Valid() {
				p.seed(n, light.Block)
				p.seed(n, light.Sky)
			}
			return true
		})
	}
}

// relight recomputes c from scratch and lets the light of its loaded face
// neighbours back in. Neighbours in reset may hold light c no longer
// justifies; their facing voxels are re-derived instead of just spread.
func (p *propagation) relight(c *Chunk, reset []ChunkPos) {
	c.mu.Lock()
	p.relightLocal(c)
	c.mu.Unlock()

	stale := make(map[ChunkPos]bool, len(reset))
	for _, pos := range reset {
		stale[pos] = true
	}
	p.seedBorders(c, stale)
}

// relightLocal rebuilds the heightmap and lights every section with its
// intrinsic levels, seeding emitters and sky. The caller holds c's lock.
func (p *propagation) relightLocal(c *Chunk) {
	c.heights.Recalculate(c)
	for _, s := range c.sections {
		if s == nil {
			continue
		}
		p.touch(c, s)
		c.lightSection(s)
		if s.Empty() {
			continue
		}
		for i, st := range s.blocks {
			if c.table.Props(st).Emission > 0 {
				p.seed(c.Pos.Block(i&0xF, s.Y<<4|i>>8, i>>4&0xF), light.Block)
			}
		}
	}
	if !c.populated {
		return
	}
	for idx := c.lo; idx <= c.hi; idx++ {
		p.seedSky(c, idx)
	}
}

// seedBorders seeds both sides of every border c shares with a loaded
// chunk.
func (p *propagation) seedBorders(c *Chunk, reset map[ChunkPos]bool) {
	ours := c.Sections()
	for _, f := range lateralFaces {
		n := p.w.chunk(faceChunk(c.Pos, f))
		if n == nil {
			continue
		}
		theirs := p.seedPlane(n, f.Opposite(), ours, reset[n.Pos])

		c.mu.RLock()
		p.seedVirtualPlane(c, f, theirs)
		c.mu.RUnlock()
	}
}

// seedPlane seeds the voxels on face f of every section of n, or re-derives
// them when reset is set. Sections listed in other that n lacks have their
// virtual sky seeded. It returns n's section indices.
func (p *propagation) seedPlane(n *Chunk, f gamedata.Face, other []int, reset bool) []int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	push := p.seed
	if reset {
		push = p.reset
	}
	for _, s := range n.sections {
		if s == nil {
			continue
		}
		sky := !s.Solid(n.table, f)
		forFace(f, func(x, y, z int) bool {
			pos := n.Pos.Block(x, s.Y<<4|y, z)
			push(pos, light.Block)
			if sky {
				push(pos, light.Sky)
			}
			return true
		})
	}
	p.seedVirtualPlane(n, f, other)
	return n.sectionIndices()
}

// seedVirtualPlane seeds the sky on face f of the sections in idxs that c
// does not have but that lie in its light domain. The caller holds c's lock.
func (p *propagation) seedVirtualPlane(c *Chunk, f gamedata.Face, idxs []int) {
	if !c.populated {
		return
	}
	for _, idx := range idxs {
		if idx < c.lo || c.section(idx) != nil {
			continue
		}
		forFace(f, func(x, y, z int) bool {
			p.seed(c.Pos.Block(x, idx<<4|y, z), light.Sky)
			return true
		})
	}
}
