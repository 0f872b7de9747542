package world

import (
	"sort"

	"github.com/gammazero/deque"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

type entryKind uint8

const (
	// kindVoxel spreads the voxel's level (increase) or its former level
	// (decrease) to its six neighbours.
	kindVoxel entryKind = iota
	// kindEdge is a single step arriving at the voxel in direction dir.
	kindEdge
	// kindReset re-derives the voxel from its own state.
	kindReset
)

// entry is one unit of propagation work. Positions are global so an entry
// can be handed to the chunk that owns it.
type entry struct {
	pos   BlockPos
	level int8 // decrease voxel: former level; edge: level carried by the step
	dir   gamedata.Face
	ch    light.Channel
	kind  entryKind
}

type queues struct {
	dec, inc deque.Deque[entry]
}

type sectionKey struct {
	chunk ChunkPos
	y     int
}

// propagation is one run of the engine over any number of chunks. Each
// chunk's work is drained under that chunk's write lock only; steps that
// leave the chunk are queued for the chunk they enter. All decrease work is
// drained before any increase work.
type propagation struct {
	w      *World
	queues map[ChunkPos]*queues
	order  []ChunkPos
	before map[sectionKey]*light.Array
}

func newPropagation(w *World) *propagation {
	return &propagation{
		w:      w,
		queues: make(map[ChunkPos]*queues),
		before: make(map[sectionKey]*light.Array),
	}
}

// stepBase is the cost of a step before the filter of the entered voxel.
// Sky light falling straight down is free.
func stepBase(ch light.Channel, d gamedata.Face) int {
	if ch == light.Sky && d == gamedata.Down {
		return 0
	}
	return 1
}

func (p *propagation) queue(pos ChunkPos) *queues {
	q, ok := p.queues[pos]
	if !ok {
		q = &queues{}
		p.queues[pos] = q
		p.order = append(p.order, pos)
	}
	return q
}

func (p *propagation) pushDec(e entry) { p.queue(e.pos.Chunk()).dec.PushBack(e) }
func (p *propagation) pushInc(e entry) { p.queue(e.pos.Chunk()).inc.PushBack(e) }

func (p *propagation) seed(pos BlockPos, ch light.Channel) {
	p.pushInc(entry{pos: pos, ch: ch, kind: kindVoxel})
}

func (p *propagation) reset(pos BlockPos, ch light.Channel) {
	p.pushDec(entry{pos: pos, ch: ch, kind: kindReset})
}

// run drains every queue until the world has converged.
func (p *propagation) run() {
	for {
		if pos, ok := p.next(true); ok {
			p.drain(pos, true)
			continue
		}
		if pos, ok := p.next(false); ok {
			p.drain(pos, false)
			continue
		}
		return
	}
}

func (p *propagation) next(dec bool) (ChunkPos, bool) {
	for _, pos := range p.order {
		q := p.queues[pos]
		if dec && q.dec.Len() > 0 || !dec && q.inc.Len() > 0 {
			return pos, true
		}
	}
	return ChunkPos{}, false
}

func (p *propagation) drain(pos ChunkPos, dec bool) {
	c := p.w.chunk(pos)
	if c == nil {
		p.deferQueued(pos)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p.drainLocked(c, dec)
}

func (p *propagation) drainLocked(c *Chunk, dec bool) {
	q := p.queue(c.Pos)
	p.w.stats.passes.Inc()
	if dec {
		for q.dec.Len() > 0 {
			p.decrease(c, q.dec.PopFront())
		}
		return
	}
	for q.inc.Len() > 0 {
		p.increase(c, q.inc.PopFront())
	}
}

// drainLocal converges c on its own. Work for other chunks stays queued.
// The caller holds c's lock.
func (p *propagation) drainLocal(c *Chunk) {
	q := p.queue(c.Pos)
	for q.dec.Len() > 0 || q.inc.Len() > 0 {
		p.drainLocked(c, q.dec.Len() > 0)
	}
}

// deferQueued drops the work queued for an unloaded chunk. Steps that tried
// to carry light into it are remembered so they can be replayed on load.
func (p *propagation) deferQueued(pos ChunkPos) {
	q := p.queues[pos]
	for q.inc.Len() > 0 {
		e := q.inc.PopFront()
		if e.kind != kindEdge {
			continue
		}
		src := e.pos.Offset(e.dir.Opposite()).Chunk()
		p.w.neighbours.Defer(src, pos)
	}
	q.dec.Clear()
}

func (p *propagation) increase(c *Chunk, e entry) {
	if e.kind == kindEdge {
		p.arrive(c, e)
		return
	}
	lvl := c.level(e.pos, e.ch)
	if lvl == 0 {
		return
	}
	props := c.props(e.pos)
	for _, d := range gamedata.Faces {
		if !props.IsOpaque() && props.Full.Has(d) {
			continue
		}
		n := e.pos.Offset(d)
		if !n.Valid() {
			continue
		}
		out := lvl - stepBase(e.ch, d)
		if out <= 0 {
			continue
		}
		step := entry{pos: n, level: int8(out), dir: d, ch: e.ch, kind: kindEdge}
		if n.Chunk() == c.Pos {
			p.arrive(c, step)
		} else {
			p.pushInc(step)
		}
	}
}

// arrive raises the voxel when the step brings more light than it holds.
// Block light reaching below the chunk's lowest section extends the chunk
// down to it. Sky light never does: falling sky is free and would extend
// the column to the bottom of the world.
func (p *propagation) arrive(c *Chunk, e entry) {
	if c.underground(e.pos) {
		if e.ch != light.Block {
			return
		}
		p.extend(c, e.pos.Section())
	}
	props := c.props(e.pos)
	if props.BlocksFace(e.dir.Opposite()) {
		return
	}
	cand := int(e.level) - props.Filter
	if cand <= c.level(e.pos, e.ch) {
		return
	}
	p.set(c, e.pos, e.ch, cand)
	p.seed(e.pos, e.ch)
}

func (p *propagation) decrease(c *Chunk, e entry) {
	switch e.kind {
	case kindReset:
		p.rederive(c, e)
	case kindEdge:
		p.fade(c, e)
	default:
		for _, d := range gamedata.Faces {
			n := e.pos.Offset(d)
			if !n.Valid() {
				continue
			}
			step := entry{pos: n, level: e.level - int8(stepBase(e.ch, d)), dir: d, ch: e.ch, kind: kindEdge}
			if n.Chunk() == c.Pos {
				p.fade(c, step)
			} else {
				p.pushDec(step)
			}
		}
	}
}

// fade handles a step from a voxel whose light went away. A neighbour whose
// level could have come through that step loses it; any other lit neighbour
// is kept and re-spread by the increase pass.
func (p *propagation) fade(c *Chunk, e entry) {
	if c.underground(e.pos) {
		return
	}
	props := c.props(e.pos)
	if props.BlocksFace(e.dir.Opposite()) {
		return
	}
	nl := c.level(e.pos, e.ch)
	if nl == 0 {
		return
	}
	own := c.intrinsic(e.pos, e.ch)
	if nl <= int(e.level)-props.Filter && nl > own {
		p.set(c, e.pos, e.ch, own)
		p.pushDec(entry{pos: e.pos, level: int8(nl), ch: e.ch, kind: kindVoxel})
		if own > 0 {
			p.seed(e.pos, e.ch)
		}
		return
	}
	p.seed(e.pos, e.ch)
}

// rederive drops the voxel to its intrinsic level when it holds more, or
// raises it when it holds less, and queues the follow-up passes.
func (p *propagation) rederive(c *Chunk, e entry) {
	cur := c.level(e.pos, e.ch)
	own := c.intrinsic(e.pos, e.ch)
	if cur != own {
		p.set(c, e.pos, e.ch, own)
	}
	if cur > own {
		p.pushDec(entry{pos: e.pos, level: int8(cur), ch: e.ch, kind: kindVoxel})
	}
	p.seed(e.pos, e.ch)
}

// set stores a level, materialising the voxel's section when needed.
func (p *propagation) set(c *Chunk, pos BlockPos, ch light.Channel, lvl int) {
	s := c.section(pos.Section())
	if s == nil {
		s = p.materialize(c, pos.Section())
	} else if s.light == nil {
		p.touch(c, s)
		c.lightSection(s)
	} else {
		p.touch(c, s)
	}
	i := pos.Index()
	old := s.light.Get(i)
	if old.Get(ch) == lvl {
		return
	}
	if lvl > old.Get(ch) {
		p.w.stats.raised.Inc()
	} else {
		p.w.stats.lowered.Inc()
	}
	s.light.Set(i, old.With(ch, lvl))
}

// materialize creates an absent section lit with the levels it implicitly
// had and seeds its sky so the light reaches shaded voxels.
func (p *propagation) materialize(c *Chunk, idx int) *Section {
	s := c.addSection(idx)
	p.touch(c, s)
	c.lightSection(s)
	p.seedSky(c, idx)
	return s
}

// seedSky seeds the directly sky-lit voxels of section idx that can pass
// light to a shaded voxel: the surface voxel of a column, and voxels next to
// a column with a higher surface or on the chunk border.
func (p *propagation) seedSky(c *Chunk, idx int) {
	base := idx << 4
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			h := c.heights.Get(x, z)
			if h >= base+16 {
				continue
			}
			edge := MaxY
			if x > 0 && x < 15 && z > 0 && z < 15 {
				edge = max(c.heights.Get(x-1, z), c.heights.Get(x+1, z),
					c.heights.Get(x, z-1), c.heights.Get(x, z+1))
			}
			for y := max(h, base); y < base+16; y++ {
				if y == h || y < edge {
					p.seed(c.Pos.Block(x, y, z), light.Sky)
				}
			}
		}
	}
}

func (p *propagation) touch(c *Chunk, s *Section) {
	key := sectionKey{chunk: c.Pos, y: s.Y}
	if _, ok := p.before[key]; !ok {
		p.before[key] = s.light.Clone()
	}
}

// merge moves the queued work and touched sections of o into p.
func (p *propagation) merge(o *propagation) {
	for _, pos := range o.order {
		src := o.queues[pos]
		dst := p.queue(pos)
		for src.dec.Len() > 0 {
			dst.dec.PushBack(src.dec.PopFront())
		}
		for src.inc.Len() > 0 {
			dst.inc.PushBack(src.inc.PopFront())
		}
	}
	for k, v := range o.before {
		if _, ok := p.before[k]; !ok {
			p.before[k] = v
		}
	}
}

// changed returns, per chunk, the sections whose light differs from before
// the run, in ascending order.
func (p *propagation) changed() map[ChunkPos][]int {
	out := make(map[ChunkPos][]int)
	for key, before := range p.before {
		c := p.w.chunk(key.chunk)
		if c == nil {
			continue
		}
		c.mu.RLock()
		s := c.section(key.y)
		same := s != nil && before.Equal(s.light)
		c.mu.RUnlock()
		if !same {
			out[key.chunk] = append(out[key.chunk], key.y)
		}
	}
	for _, ys := range out {
		sort.Ints(ys)
	}
	return out
}
