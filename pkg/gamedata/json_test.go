package gamedata

import (
	"strings"
	"testing"
)

const sampleBlocksJSON = `[
  {"id":0,"name":"air","displayName":"Air","boundingBox":"empty","transparent":true,"emitLight":0,"filterLight":0},
  {"id":1,"name":"stone","displayName":"Stone","boundingBox":"block","material":"rock","transparent":false,"emitLight":0,"filterLight":15},
  {"id":18,"name":"leaves","displayName":"Leaves","boundingBox":"block","transparent":true,"emitLight":0,"filterLight":1},
  {"id":50,"name":"torch","displayName":"Torch","boundingBox":"empty","transparent":true,"emitLight":14,"filterLight":0},
  {"id":53,"name":"oak_stairs","displayName":"Oak Stairs","boundingBox":"block","transparent":true,"emitLight":0,"filterLight":0}
]`

func TestLoadBlocksJSON(t *testing.T) {
	reg, err := LoadBlocksJSON(strings.NewReader(sampleBlocksJSON))
	if err != nil {
		t.Fatalf("LoadBlocksJSON: %v", err)
	}

	stone, ok := reg.ByID(1)
	if !ok {
		t.Fatal("expected block 1")
	}
	if !stone.Light.IsOpaque() || stone.Material != "rock" {
		t.Errorf("stone = %+v, want opaque rock", stone)
	}

	leaves, _ := reg.ByName("leaves")
	if leaves.Light.Class != Filter || leaves.Light.Filter != 1 {
		t.Errorf("leaves light = %+v, want filter 1", leaves.Light)
	}

	torch, _ := reg.ByName("torch")
	if torch.Light.Emission != 14 || torch.Light.Class != Transparent {
		t.Errorf("torch light = %+v, want transparent emission 14", torch.Light)
	}

	if got := len(reg.All()); got != 5 {
		t.Errorf("len(All()) = %d, want 5", got)
	}
}

func TestLoadBlocksJSON_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"not an array":      `{"id":1}`,
		"missing name":      `[{"id":1,"transparent":true,"emitLight":0,"filterLight":0}]`,
		"emission too high": `[{"id":1,"name":"x","transparent":true,"emitLight":20,"filterLight":0}]`,
		"bad bounding box":  `[{"id":1,"name":"x","boundingBox":"round","transparent":true,"emitLight":0,"filterLight":0}]`,
		"malformed":         `[{"id":1,`,
	}
	for name, doc := range tests {
		if _, err := LoadBlocksJSON(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

const sampleShapesJSON = `{
  "blocks": {"stone": 1, "oak_stairs": [2, 3], "torch": 0},
  "shapes": {
    "0": [],
    "1": [[0,0,0,1,1,1]],
    "2": [[0,0,0,1,0.5,1],[0,0.5,0.5,1,1,1]],
    "3": [[0,0.5,0,1,1,1],[0,0,0.5,1,0.5,1]]
  }
}`

func TestApplyShapes(t *testing.T) {
	reg, err := LoadBlocksJSON(strings.NewReader(sampleBlocksJSON))
	if err != nil {
		t.Fatalf("LoadBlocksJSON: %v", err)
	}
	cs, err := ParseCollisionShapes(strings.NewReader(sampleShapesJSON))
	if err != nil {
		t.Fatalf("ParseCollisionShapes: %v", err)
	}
	if got := cs.Blocks["oak_stairs"]; len(got) != 2 {
		t.Fatalf("oak_stairs shapes = %v, want 2 entries", got)
	}

	reg.ApplyShapes(cs)

	stairs, _ := reg.ByName("oak_stairs")
	// Only the lower half spans a whole face on its own.
	want := FaceMask(0).With(Down)
	if stairs.Light.Full != want {
		t.Errorf("oak_stairs full faces = %06b, want %06b", stairs.Light.Full, want)
	}

	torch, _ := reg.ByName("torch")
	if torch.Light.Full != 0 {
		t.Errorf("torch full faces = %06b, want 0", torch.Light.Full)
	}

	stone, _ := reg.ByName("stone")
	if stone.Light.Full != AllFaces {
		t.Errorf("stone full faces = %06b, want all", stone.Light.Full)
	}
}

func TestFullFaces(t *testing.T) {
	if got := FullFaces([]BoundingBox{{0, 0, 0, 1, 1, 1}}); got != AllFaces {
		t.Errorf("full cube = %06b, want %06b", got, AllFaces)
	}
	if got := FullFaces(nil); got != 0 {
		t.Errorf("empty shape = %06b, want 0", got)
	}
	topSlab := FullFaces([]BoundingBox{{0, 0.5, 0, 1, 1, 1}})
	if topSlab != FaceMask(0).With(Up) {
		t.Errorf("top slab = %06b, want up only", topSlab)
	}
}
