//go:build ebiten

package ui

import (
	"image/color"

	"fissh/internal/core"
	"fissh/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var blockedTint = color.NRGBA{R: 255, G: 40, B: 40, A: 110}

type blockedMaskProvider interface {
	BlockedMask() []uint8
}

// Overlay draws optional debugging visuals on top of the tank.
type Overlay struct {
	sim         core.Sim
	scale       int
	showBlocked bool
	hideBubbles bool
	painter     *render.GridPainter
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	size := sim.Size()
	return &Overlay{sim: sim, scale: scale, painter: render.NewGridPainter(size.W, size.H)}
}

// Update toggles the overlay layers: 1 shows cells blocked for spawning, 2
// hides bubbles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBlocked = !o.showBlocked
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.hideBubbles = !o.hideBubbles
	}
}

// HideBubbles reports whether bubbles should be left out of the base layer.
func (o *Overlay) HideBubbles() bool { return o.hideBubbles }

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.showBlocked {
		return
	}
	provider, ok := o.sim.(blockedMaskProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	o.painter.Resize(size.W, size.H)
	o.painter.BlitMask(screen, provider.BlockedMask(), blockedTint, o.scale)
}
