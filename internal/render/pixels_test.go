package render

import (
	"image/color"
	"slices"
	"testing"

	"fissh/internal/aquarium"
	pcore "fissh/pkg/core"
)

func TestFillSpeciesUsesTankPalette(t *testing.T) {
	tank, err := aquarium.NewTank(4, 4, aquarium.DefaultParams(), pcore.NewRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	palette := tank.Palette()
	cells := []uint8{uint8(aquarium.Empty), uint8(aquarium.Crab), 250}
	buf := make([]byte, 4*len(cells))
	fillSpecies(buf, cells, palette)

	water, crab := palette[aquarium.Empty], palette[aquarium.Crab]
	want := []byte{
		water.R, water.G, water.B, water.A,
		crab.R, crab.G, crab.B, crab.A,
		water.R, water.G, water.B, water.A,
	}
	if !slices.Equal(buf, want) {
		t.Fatalf("buf = %v, want %v (unknown codes draw as water)", buf, want)
	}
}

func TestFillSpeciesWithoutPaletteDrawsDeepWater(t *testing.T) {
	buf := make([]byte, 4)
	fillSpecies(buf, []uint8{uint8(aquarium.Fish)}, nil)
	want := []byte{deepWater.R, deepWater.G, deepWater.B, deepWater.A}
	if !slices.Equal(buf, want) {
		t.Fatalf("buf = %v, want %v", buf, want)
	}
}

func TestFillTintPremultiplies(t *testing.T) {
	buf := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	fillTint(buf, []uint8{1, 0}, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	want := []byte{128, 0, 0, 128, 0, 0, 0, 0}
	if !slices.Equal(buf, want) {
		t.Fatalf("buf = %v, want %v", buf, want)
	}
}
