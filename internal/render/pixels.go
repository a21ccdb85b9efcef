package render

import (
	"image/color"

	"fissh/internal/aquarium"
)

// deepWater fills cells when the caller supplies no palette.
var deepWater = color.RGBA{R: 8, G: 24, B: 48, A: 255}

// fillSpecies writes one pixel per cell, colouring each species through
// palette. Codes the palette does not cover are drawn as empty water.
func fillSpecies(buf []byte, cells []uint8, palette []color.RGBA) {
	water := deepWater
	if int(aquarium.Empty) < len(palette) {
		water = palette[aquarium.Empty]
	}
	for i, c := range cells {
		col := water
		if int(c) < len(palette) {
			col = palette[c]
		}
		putPixel(buf, i, col)
	}
}

// fillTint writes tint over every marked cell and leaves the rest
// transparent. Ebiten images hold premultiplied alpha, so the straight tint
// is premultiplied first.
func fillTint(buf []byte, mask []uint8, tint color.NRGBA) {
	r, g, b, a := tint.RGBA()
	on := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	for i, m := range mask {
		if m != 0 {
			putPixel(buf, i, on)
			continue
		}
		putPixel(buf, i, color.RGBA{})
	}
}

func putPixel(buf []byte, i int, c color.RGBA) {
	p := buf[i*4 : i*4+4 : i*4+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}
