//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads one byte per cell to a w x h image and draws it scaled.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a w x h grid.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{}
	gp.Resize(w, h)
	return gp
}

// Resize reallocates the backing image when the grid size changes.
func (gp *GridPainter) Resize(w, h int) {
	if w == gp.w && h == gp.h && gp.img != nil {
		return
	}
	gp.w, gp.h = max(w, 1), max(h, 1)
	if gp.img != nil {
		gp.img.Deallocate()
	}
	gp.img = ebiten.NewImage(gp.w, gp.h)
	gp.buf = make([]byte, 4*gp.w*gp.h)
}

// Blit paints species cells through palette, one pixel per cell, scaled onto
// screen.
func (gp *GridPainter) Blit(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	if len(cells) != gp.w*gp.h {
		return
	}
	fillSpecies(gp.buf, cells, palette)
	gp.draw(screen, scale)
}

// BlitMask tints the marked cells and leaves the rest of screen showing.
func (gp *GridPainter) BlitMask(screen *ebiten.Image, mask []uint8, tint color.NRGBA, scale int) {
	if len(mask) != gp.w*gp.h {
		return
	}
	fillTint(gp.buf, mask, tint)
	gp.draw(screen, scale)
}

func (gp *GridPainter) draw(screen *ebiten.Image, scale int) {
	gp.img.WritePixels(gp.buf)
	if scale <= 0 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
