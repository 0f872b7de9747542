package gamedata

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// CollisionShapes maps block names to shape IDs and shape IDs to boxes, as in
// minecraft-data blockCollisionShapes.json.
type CollisionShapes struct {
	Blocks map[string][]int
	Shapes map[int][]BoundingBox
}

// BoundingBox is an axis-aligned box in voxel-local units [0,1].
type BoundingBox struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// ParseCollisionShapes reads a blockCollisionShapes.json document. Block
// entries may hold a single shape ID or one ID per state.
func ParseCollisionShapes(r io.Reader) (*CollisionShapes, error) {
	var doc struct {
		Blocks map[string]json.RawMessage `json:"blocks"`
		Shapes map[string][][6]float64    `json:"shapes"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse collision shapes: %w", err)
	}

	cs := &CollisionShapes{
		Blocks: make(map[string][]int, len(doc.Blocks)),
		Shapes: make(map[int][]BoundingBox, len(doc.Shapes)),
	}
	for name, raw := range doc.Blocks {
		var single int
		if err := json.Unmarshal(raw, &single); err == nil {
			cs.Blocks[name] = []int{single}
			continue
		}
		var many []int
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, fmt.Errorf("collision shapes of %q: %w", name, err)
		}
		cs.Blocks[name] = many
	}
	for key, boxes := range doc.Shapes {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("shape id %q: %w", key, err)
		}
		out := make([]BoundingBox, 0, len(boxes))
		for _, b := range boxes {
			out = append(out, BoundingBox{MinX: b[0], MinY: b[1], MinZ: b[2], MaxX: b[3], MaxY: b[4], MaxZ: b[5]})
		}
		cs.Shapes[id] = out
	}
	return cs, nil
}

// FullFaces returns the faces covered completely by a single box of the shape.
func FullFaces(boxes []BoundingBox) FaceMask {
	var m FaceMask
	for _, b := range boxes {
		spansX := b.MinX <= 0 && b.MaxX >= 1
		spansY := b.MinY <= 0 && b.MaxY >= 1
		spansZ := b.MinZ <= 0 && b.MaxZ >= 1
		if spansX && spansZ {
			if b.MinY <= 0 {
				m = m.With(Down)
			}
			if b.MaxY >= 1 {
				m = m.With(Up)
			}
		}
		if spansX && spansY {
			if b.MinZ <= 0 {
				m = m.With(North)
			}
			if b.MaxZ >= 1 {
				m = m.With(South)
			}
		}
		if spansY && spansZ {
			if b.MinX <= 0 {
				m = m.With(West)
			}
			if b.MaxX >= 1 {
				m = m.With(East)
			}
		}
	}
	return m
}

// ApplyShapes sets the full faces of every non-opaque block from the shape of
// its first state. Opaque blocks already cover every face.
func (r *Blocks) ApplyShapes(cs *CollisionShapes) {
	for id, b := range r.byID {
		if b.Light.IsOpaque() {
			continue
		}
		ids, ok := cs.Blocks[b.Name]
		if !ok || len(ids) == 0 {
			continue
		}
		b.Light.Full = FullFaces(cs.Shapes[ids[0]])
		r.byID[id] = b
	}
}
