package gamedata

// MaxBlockID bounds block IDs; a block state packs the ID in its upper 12 bits
// and metadata in the lower 4.
const MaxBlockID = 1 << 12

// State is a block state ID: blockID<<4 | metadata. State 0 is air.
type State uint16

// StateOf builds the state of a block ID with metadata.
func StateOf(id, meta int) State {
	return State(id<<4 | meta&0xF)
}

// BlockID returns the block ID of the state.
func (s State) BlockID() int { return int(s >> 4) }

// LightTable is a flat per-block lookup of light properties, resolved once
// from a BlockRegistry so the propagation engine never calls back into it.
// Block IDs the registry does not know are treated as opaque.
type LightTable struct {
	props [MaxBlockID]LightProperties
}

// NewLightTable resolves every block of reg. Air is always transparent.
func NewLightTable(reg BlockRegistry) *LightTable {
	t := &LightTable{}
	for i := range t.props {
		t.props[i] = LightProperties{Class: Opaque, Full: AllFaces}
	}
	for _, b := range reg.All() {
		t.props[b.ID] = b.Light
	}
	t.props[0] = LightProperties{}
	return t
}

// Props returns the light properties of a block state.
func (t *LightTable) Props(s State) LightProperties {
	return t.props[s.BlockID()]
}
