package aquarium

import (
	"testing"

	"fissh/internal/core"
)

func TestRegisteredSim(t *testing.T) {
	sim, err := core.Lookup("aquarium", map[string]string{"rows": "8", "cols": "10", "seed": "3"})
	if err != nil {
		t.Fatal(err)
	}
	if got := sim.Size(); got != (core.Size{W: 10, H: 8}) {
		t.Fatalf("size = %+v", got)
	}
	if n := len(sim.Cells()); n != 80 {
		t.Fatalf("expected 80 cells, got %d", n)
	}
	tank := sim.(*Tank)
	before := tank.Tick()
	sim.Step()
	if tank.Tick() != before+1 {
		t.Fatal("Step should advance one tick")
	}
	sim.Reset(9)
	if tank.Tick() != 0 {
		t.Fatal("Reset should rewind the tick counter")
	}
}

func TestGardenVariantPlantsFloor(t *testing.T) {
	sim, err := core.Lookup("aquarium-garden", map[string]string{"variance": "1", "vegetation_divisor": "1"})
	if err != nil {
		t.Fatal(err)
	}
	tank := sim.(*Tank)
	if tank.Vegetation() == nil {
		t.Fatal("garden variant should keep a vegetation layer")
	}
	if got := tank.Census().Vegetation; got != tank.Cols() {
		t.Fatalf("probability one should plant every column, got %d of %d", got, tank.Cols())
	}
}

func TestCellsUseOcclusion(t *testing.T) {
	tank, err := NewTank(3, 2, DefaultParams(), &script{})
	if err != nil {
		t.Fatal(err)
	}
	tank.Entities().Set(0, 0, Fish)
	tank.Bubbles().Set(0, 0, Bubble)
	tank.Entities().Set(2, 1, Crab)
	cells := tank.Cells()
	if Species(cells[0]) != Bubble || Species(cells[5]) != Crab || Species(cells[1]) != Empty {
		t.Fatalf("unexpected display buffer %v", cells)
	}
	if len(tank.Palette()) != len(glyphs) {
		t.Fatal("palette should cover every species")
	}
}

func TestBlockedMask(t *testing.T) {
	tank, err := NewTank(3, 3, DefaultParams(), &script{})
	if err != nil {
		t.Fatal(err)
	}
	tank.Entities().Set(0, 0, Fish)
	mask := tank.BlockedMask()
	want := []uint8{0, 1, 0, 1, 1, 0, 0, 0, 0}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("mask = %v, expected %v", mask, want)
		}
	}
}

func TestParameterSetters(t *testing.T) {
	tank, err := NewTank(4, 4, DefaultParams(), &script{floats: []float64{0.01}})
	if err != nil {
		t.Fatal(err)
	}
	if !tank.SetFloatParameter("variance", 3) || tank.Params().Variance != 1 {
		t.Fatalf("variance should clamp to 1, got %v", tank.Params().Variance)
	}
	if !tank.SetFloatParameter("crawl_divisor", 0) || tank.Params().CrawlDivisor != 1 {
		t.Fatalf("divisor should clamp to 1, got %v", tank.Params().CrawlDivisor)
	}
	if tank.SetFloatParameter("unknown", 1) {
		t.Fatal("unknown keys should be refused")
	}
	if !tank.SetIntParameter("crawl_cadence", 5) || tank.Params().CrawlCadence != 5 {
		t.Fatal("cadence should update")
	}
	if !tank.SetBoolParameter("vegetation", true) || tank.Vegetation() == nil {
		t.Fatal("enabling vegetation should allocate its layer")
	}
	if !tank.SetBoolParameter("vegetation", false) || tank.Vegetation() != nil {
		t.Fatal("disabling vegetation should drop its layer")
	}

	snap := tank.Parameters()
	if p, ok := snap.Find("crawl_cadence"); !ok || p.Value != "5" {
		t.Fatalf("snapshot cadence = %+v", p)
	}
}
