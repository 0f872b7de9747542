package gamedata

import (
	"fmt"
	"sort"
)

// BlockRegistry resolves block types by numeric ID or name.
type BlockRegistry interface {
	ByID(id int) (Block, bool)
	ByName(name string) (Block, bool)
	All() []Block
}

// GameData is the registry set of one data version.
type GameData struct {
	Version string
	Blocks  BlockRegistry
}

// Blocks is the in-memory BlockRegistry built by the loaders.
type Blocks struct {
	byID   map[int]Block
	byName map[string]int
}

// NewBlocks builds a registry from the given blocks. Duplicate IDs or names
// and invalid light properties are rejected.
func NewBlocks(blocks []Block) (*Blocks, error) {
	r := &Blocks{
		byID:   make(map[int]Block, len(blocks)),
		byName: make(map[string]int, len(blocks)),
	}
	for _, b := range blocks {
		if b.ID < 0 || b.ID >= MaxBlockID {
			return nil, fmt.Errorf("block %q: id %d out of range [0,%d)", b.Name, b.ID, MaxBlockID)
		}
		if _, ok := r.byID[b.ID]; ok {
			return nil, fmt.Errorf("block %q: duplicate id %d", b.Name, b.ID)
		}
		if _, ok := r.byName[b.Name]; ok {
			return nil, fmt.Errorf("duplicate block name %q", b.Name)
		}
		if err := b.Light.Validate(); err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		r.byID[b.ID] = b
		r.byName[b.Name] = b.ID
	}
	return r, nil
}

func (r *Blocks) ByID(id int) (Block, bool) {
	b, ok := r.byID[id]
	return b, ok
}

func (r *Blocks) ByName(name string) (Block, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Block{}, false
	}
	return r.byID[id], true
}

// All returns every block ordered by ID.
func (r *Blocks) All() []Block {
	out := make([]Block, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
