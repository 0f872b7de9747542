package light

import "testing"

func TestNewPacksSkyHighBlockLow(t *testing.T) {
	v := New(14, 15)
	if uint8(v) != 0xFE {
		t.Errorf("New(14, 15) = 0x%02X, want 0xFE", uint8(v))
	}
	if v.Block() != 14 || v.Sky() != 15 {
		t.Errorf("channels = (%d,%d), want (14,15)", v.Block(), v.Sky())
	}
	if v.String() != "0xFE" {
		t.Errorf("String() = %q, want %q", v.String(), "0xFE")
	}
}

func TestWithReplacesOneChannel(t *testing.T) {
	v := New(3, 9)

	v = v.With(Block, 13)
	if v.Block() != 13 || v.Sky() != 9 {
		t.Errorf("after With(Block,13) = (%d,%d), want (13,9)", v.Block(), v.Sky())
	}

	v = v.With(Sky, 0)
	if uint8(v) != 0x0D {
		t.Errorf("after With(Sky,0) = %v, want 0x0D", v)
	}
	if v.Get(Block) != 13 || v.Get(Sky) != 0 {
		t.Errorf("Get = (%d,%d), want (13,0)", v.Get(Block), v.Get(Sky))
	}
}

func TestIllegalLevelPanics(t *testing.T) {
	cases := []func(){
		func() { New(16, 0) },
		func() { New(0, -1) },
		func() { New(0, 0).With(Sky, 16) },
	}
	for i, fn := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("case %d: expected panic", i)
				}
			}()
			fn()
		}()
	}
}

func TestArrayIndexLayout(t *testing.T) {
	if got := Index(1, 0, 0); got != 1 {
		t.Errorf("Index(1,0,0) = %d, want 1", got)
	}
	if got := Index(0, 0, 1); got != 16 {
		t.Errorf("Index(0,0,1) = %d, want 16", got)
	}
	if got := Index(0, 1, 0); got != 256 {
		t.Errorf("Index(0,1,0) = %d, want 256", got)
	}
	if got := Index(15, 15, 15); got != Volume-1 {
		t.Errorf("Index(15,15,15) = %d, want %d", got, Volume-1)
	}

	defer func() {
		if recover() == nil {
			t.Error("Index(16,0,0) should panic")
		}
	}()
	Index(16, 0, 0)
}

func TestArrayCloneAndEqual(t *testing.T) {
	var a Array
	a.Fill(New(0, 15))
	a.Set(Index(8, 8, 8), New(14, 15))

	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should equal original")
	}
	b.Set(0, 0)
	if a.Equal(b) {
		t.Error("modified clone should differ")
	}
	if a.Get(0) != New(0, 15) {
		t.Error("modifying the clone changed the original")
	}

	var nilA, nilB *Array
	if !nilA.Equal(nilB) {
		t.Error("two nil arrays should be equal")
	}
	if nilA.Equal(&a) {
		t.Error("nil and non-nil arrays should differ")
	}
}
