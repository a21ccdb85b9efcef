package aquarium

import "image/color"

var aquariumPalette = buildPalette()

// Palette exposes the colour used for each Species when the tank is drawn as
// pixels rather than glyphs.
func (t *Tank) Palette() []color.RGBA {
	return aquariumPalette
}

func buildPalette() []color.RGBA {
	palette := make([]color.RGBA, len(glyphs))
	for i := range palette {
		palette[i] = paletteColorFor(Species(i))
	}
	return palette
}

func paletteColorFor(s Species) color.RGBA {
	switch s {
	case Fish:
		return color.RGBA{R: 90, G: 150, B: 220, A: 255}
	case TropicalFish:
		return color.RGBA{R: 250, G: 170, B: 40, A: 255}
	case Blowfish:
		return color.RGBA{R: 230, G: 210, B: 120, A: 255}
	case Crab:
		return color.RGBA{R: 220, G: 60, B: 50, A: 255}
	case Seedling:
		return color.RGBA{R: 70, G: 170, B: 80, A: 255}
	case Bubble:
		return color.RGBA{R: 200, G: 235, B: 250, A: 255}
	default:
		return color.RGBA{R: 8, G: 24, B: 48, A: 255}
	}
}

// Cells returns the visible species of every cell in row-major order, using
// the same occlusion order as the text frame.
func (t *Tank) Cells() []uint8 {
	total := t.Rows() * t.Cols()
	if cap(t.display) < total {
		t.display = make([]uint8, total)
	}
	t.display = t.display[:total]
	i := 0
	for row := 0; row < t.Rows(); row++ {
		for col := 0; col < t.Cols(); col++ {
			t.display[i] = uint8(Visible(t.entities, t.bubbles, t.vegetation, row, col, t.params.Occlusion))
			i++
		}
	}
	return t.display
}

// BlockedMask marks every cell a new creature could not be placed into
// because of its neighbours, as 1s in row-major order.
func (t *Tank) BlockedMask() []uint8 {
	mask := make([]uint8, t.Rows()*t.Cols())
	for row := 0; row < t.Rows(); row++ {
		for col := 0; col < t.Cols(); col++ {
			if Blocked(t.entities, row, col) {
				mask[t.entities.Index(row, col)] = 1
			}
		}
	}
	return mask
}
