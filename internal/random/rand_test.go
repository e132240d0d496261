package random

import "testing"

func TestStdRandDeterministic(t *testing.T) {
	a := NewStdRand(42)
	b := NewStdRand(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("draw %d: %d != %d for the same seed", i, x, y)
		}
	}
}

func TestStdRandBelow(t *testing.T) {
	r := NewStdRand(1)
	for i := 0; i < 1000; i++ {
		if v := r.Below(7); v >= 7 {
			t.Fatalf("Below(7) = %d", v)
		}
	}
	if v := r.Below(1); v != 0 {
		t.Errorf("Below(1) = %d, want 0", v)
	}
}

func TestStdRandBetween(t *testing.T) {
	r := NewStdRand(2)
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		v := r.Between(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Between(3, 5) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("Between(3, 5) produced %v, want all of 3..5", seen)
	}
}

func TestChoose(t *testing.T) {
	r := NewStdRand(3)
	items := []string{"a", "b"}
	for i := 0; i < 10; i++ {
		if v := Choose(r, items); v != "a" && v != "b" {
			t.Fatalf("Choose = %q", v)
		}
	}
}
