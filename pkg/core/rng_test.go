package core

import "testing"

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 32; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
	}
}

func TestIntNNonPositive(t *testing.T) {
	r := NewRNG(1)
	if got := r.IntN(0); got != 0 {
		t.Fatalf("IntN(0) = %d, expected 0", got)
	}
	if got := r.IntN(-3); got != 0 {
		t.Fatalf("IntN(-3) = %d, expected 0", got)
	}
}

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }
func (f fixed) IntN(int) int     { return 0 }

func TestChance(t *testing.T) {
	if Chance(fixed(0), 0) {
		t.Fatal("zero probability must never succeed")
	}
	if !Chance(fixed(0.1), 0.15) {
		t.Fatal("draw below probability should succeed")
	}
	if Chance(fixed(0.15), 0.15) {
		t.Fatal("draw equal to probability should fail")
	}
}
