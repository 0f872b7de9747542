package gamedata

import (
	"bytes"
	"strings"
	"testing"
)

func TestFixtures_LightProperties(t *testing.T) {
	reg, err := Fixtures()
	if err != nil {
		t.Fatalf("Fixtures: %v", err)
	}

	tests := []struct {
		name     string
		class    LightClass
		filter   int
		emission int
		full     FaceMask
	}{
		{"air", Transparent, 0, 0, 0},
		{"stone", Opaque, 0, 0, AllFaces},
		{"glass", Transparent, 0, 0, 0},
		{"torch", Transparent, 0, 14, 0},
		{"stairs", Transparent, 0, 0, FaceMask(0).With(Down)},
		{"filter", Filter, 1, 0, 0},
		{"glowstone", Opaque, 0, 15, AllFaces},
		{"slab_top", Transparent, 0, 0, FaceMask(0).With(Up)},
	}
	for _, tt := range tests {
		b, ok := reg.ByName(tt.name)
		if !ok {
			t.Errorf("fixture %q missing", tt.name)
			continue
		}
		p := b.Light
		if p.Class != tt.class || p.Filter != tt.filter || p.Emission != tt.emission || p.Full != tt.full {
			t.Errorf("%s = %+v, want class=%v filter=%d emission=%d full=%06b",
				tt.name, p, tt.class, tt.filter, tt.emission, tt.full)
		}
	}

	all := reg.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("All() not ordered by ID at %d: %d >= %d", i, all[i-1].ID, all[i].ID)
		}
	}
}

func TestLoadFixtures_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown class":  "blocks:\n  - {id: 1, name: x, class: shiny}\n",
		"unknown face":   "blocks:\n  - {id: 1, name: x, full_faces: [sideways]}\n",
		"duplicate id":   "blocks:\n  - {id: 1, name: a}\n  - {id: 1, name: b}\n",
		"duplicate name": "blocks:\n  - {id: 1, name: a}\n  - {id: 2, name: a}\n",
		"bad emission":   "blocks:\n  - {id: 1, name: a, emission: 16}\n",
		"filter missing": "blocks:\n  - {id: 1, name: a, class: filter}\n",
		"unknown field":  "blocks:\n  - {id: 1, name: a, glow: 3}\n",
	}
	for name, doc := range tests {
		if _, err := LoadFixtures(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFaceOppositeAndOffset(t *testing.T) {
	for _, f := range Faces {
		if f.Opposite().Opposite() != f {
			t.Errorf("%v: opposite of opposite = %v", f, f.Opposite().Opposite())
		}
		dx, dy, dz := f.Offset()
		ox, oy, oz := f.Opposite().Offset()
		if dx+ox != 0 || dy+oy != 0 || dz+oz != 0 {
			t.Errorf("%v and %v offsets do not cancel", f, f.Opposite())
		}
	}
}

func TestLightTable(t *testing.T) {
	reg, err := Fixtures()
	if err != nil {
		t.Fatalf("Fixtures: %v", err)
	}
	table := NewLightTable(reg)

	stone, _ := reg.ByName("stone")
	if p := table.Props(StateOf(stone.ID, 3)); !p.IsOpaque() {
		t.Errorf("stone with metadata should be opaque, got %+v", p)
	}
	if p := table.Props(0); p.Class != Transparent || p.Full != 0 {
		t.Errorf("air = %+v, want transparent", p)
	}
	if p := table.Props(StateOf(999, 0)); !p.IsOpaque() {
		t.Errorf("unknown block = %+v, want opaque", p)
	}
}

func TestWriteFixturesRoundTrip(t *testing.T) {
	reg, err := Fixtures()
	if err != nil {
		t.Fatalf("Fixtures: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteFixtures(&buf, "generated", reg.All()); err != nil {
		t.Fatalf("WriteFixtures: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# generated\n") {
		t.Errorf("missing header in %q", buf.String())
	}

	got, err := LoadFixtures(&buf)
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	want := reg.All()
	all := got.All()
	if len(all) != len(want) {
		t.Fatalf("round trip has %d blocks, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i].Name != want[i].Name || all[i].Light != want[i].Light {
			t.Errorf("block %d = %s %+v, want %s %+v", want[i].ID, all[i].Name, all[i].Light, want[i].Name, want[i].Light)
		}
	}
}
