package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.uber.org/atomic"

	"github.com/OCharnyshevich/voxel-light/internal/world"
	"github.com/OCharnyshevich/voxel-light/internal/world/codec"
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
	"github.com/OCharnyshevich/voxel-light/pkg/light"
)

// ProbeResult is the outcome of one probe.
type ProbeResult struct {
	Probe Probe
	Got   light.Value
	Unset bool
}

// OK reports whether the probed light matches every expected level.
func (r ProbeResult) OK() bool {
	if r.Unset {
		return false
	}
	if r.Probe.Block != nil && r.Got.Block() != *r.Probe.Block {
		return false
	}
	if r.Probe.Sky != nil && r.Got.Sky() != *r.Probe.Sky {
		return false
	}
	return true
}

// Result summarises a scenario run.
type Result struct {
	Name     string
	Chunks   int
	Changes  int
	Updates  int64 // chunk update events
	Probes   []ProbeResult
	Verified bool
	Mismatch []world.ChunkPos // chunks whose light differs after a full recompute
	Drift    []world.ChunkPos // chunks whose light differs from a baseline snapshot
}

// Failed returns the number of failed checks.
func (r *Result) Failed() int {
	n := len(r.Mismatch) + len(r.Drift)
	for _, p := range r.Probes {
		if !p.OK() {
			n++
		}
	}
	return n
}

// Run builds the world of sc from reg and plays it. The world is returned
// with the result so callers can inspect or persist it.
func Run(ctx context.Context, reg gamedata.BlockRegistry, sc *Scenario, opts world.Options) (*world.World, *Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	g, err := sc.Generator(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	changes := make([]world.BlockChange, 0, len(sc.Changes))
	for _, c := range sc.Changes {
		st, err := resolve(reg, c.Block, c.Meta)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %q change: %w", sc.Name, err)
		}
		changes = append(changes, world.BlockChange{
			Pos:   world.BlockPos{X: c.At[0], Y: c.At[1], Z: c.At[2]},
			State: st,
		})
	}

	w := world.NewWorld(gamedata.NewLightTable(reg), opts)
	res := &Result{Name: sc.Name}
	var updates atomic.Int64
	sub := w.Events.Subscribe(func(e world.Event) {
		if _, ok := e.(world.ChunkUpdate); ok {
			updates.Inc()
		}
	})
	defer w.Events.Unsubscribe(sub)

	for _, pos := range sc.Chunks.Positions() {
		if err := ctx.Err(); err != nil {
			return w, res, err
		}
		w.Load(pos, g.Generate(pos.X, pos.Z))
		res.Chunks++
	}
	log.Info("scenario loaded", "name", sc.Name, "chunks", res.Chunks)

	for _, c := range changes {
		if err := ctx.Err(); err != nil {
			return w, res, err
		}
		if err := w.SetBlock(c.Pos, c.State); err != nil {
			return w, res, fmt.Errorf("scenario %q: set %v: %w", sc.Name, c.Pos, err)
		}
		res.Changes++
	}

	for _, p := range sc.Probes {
		v, ok := w.Light(p.Pos())
		r := ProbeResult{Probe: p, Got: v, Unset: !ok}
		if !r.OK() {
			log.Warn("probe failed", "pos", p.Pos(), "got", v, "unset", !ok)
		}
		res.Probes = append(res.Probes, r)
	}

	if sc.Verify {
		res.Mismatch = verify(w)
		res.Verified = true
		if len(res.Mismatch) > 0 {
			log.Warn("recompute differs", "chunks", len(res.Mismatch))
		}
	}
	res.Updates = updates.Load()
	return w, res, nil
}

// Capture copies the light of every loaded chunk, in position order.
func Capture(w *world.World) []codec.ChunkLight {
	var out []codec.ChunkLight
	for _, pos := range w.Chunks() {
		if c, ok := w.Chunk(pos); ok {
			out = append(out, codec.Capture(c))
		}
	}
	return out
}

// verify recomputes every chunk from scratch and returns the chunks whose
// light differs from the incrementally maintained light.
func verify(w *world.World) []world.ChunkPos {
	before := Capture(w)
	w.CalculateAll()
	return Compare(Capture(w), before)
}

// Compare returns the chunks whose light differs between got and want,
// counting chunks present on one side only, in position order.
func Compare(got, want []codec.ChunkLight) []world.ChunkPos {
	byPos := make(map[world.ChunkPos]codec.ChunkLight, len(want))
	for _, cl := range want {
		byPos[cl.Pos] = cl
	}
	var out []world.ChunkPos
	for _, cl := range got {
		w, ok := byPos[cl.Pos]
		delete(byPos, cl.Pos)
		if !ok || !cl.Equal(w) {
			out = append(out, cl.Pos)
		}
	}
	for pos := range byPos {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}
