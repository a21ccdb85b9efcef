//go:build ebiten

package app

import (
	"time"

	"fissh/internal/aquarium"
	"fissh/internal/core"
	"fissh/internal/render"
	"fissh/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts an aquarium tank to the ebiten.Game interface.
type Game struct {
	tank    *aquarium.Tank
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	timer   *core.FixedStep

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
	cells    []uint8
}

// New constructs a Game that advances tank every interval.
func New(tank *aquarium.Tank, scale int, interval time.Duration, seed int64) *Game {
	size := tank.Size()
	hudWidth := 220
	return &Game{
		tank:     tank,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(tank, scale),
		hud:      ui.NewHUD(tank, hudWidth),
		timer:    core.NewFixedInterval(interval),
		scale:    scale,
		hudWidth: hudWidth,
		seed:     seed,
	}
}

// Reset reinitializes the tank with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.tank.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the tank when its interval is
// due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	rows, cols := g.tank.Rows(), g.tank.Cols()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		rows--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		rows++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		cols--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		cols++
	}

	g.overlay.Update()
	g.hud.Update(cols * g.scale)

	if g.tank.Resize(rows, cols) {
		size := g.tank.Size()
		g.painter.Resize(size.W, size.H)
		ebiten.SetWindowSize(size.W*g.scale+g.hudWidth, size.H*g.scale)
	}
	step := g.timer.ShouldStep() && !g.paused
	if step || g.tickOnce {
		g.tank.Advance(g.tank.Rows(), g.tank.Cols())
		g.tickOnce = false
	}
	return nil
}

// Draw renders the current tank state.
func (g *Game) Draw(screen *ebiten.Image) {
	cells := g.tank.Cells()
	if g.overlay.HideBubbles() {
		cells = g.withoutBubbles(cells)
	}
	g.painter.Blit(screen, cells, g.tank.Palette(), g.scale)
	g.overlay.Draw(screen)
	size := g.tank.Size()
	g.hud.Draw(screen, size.W*g.scale, g.scale)
}

// withoutBubbles replaces every visible bubble with whatever lies beneath it.
func (g *Game) withoutBubbles(cells []uint8) []uint8 {
	g.cells = append(g.cells[:0], cells...)
	entities := g.tank.Entities().Cells()
	vegetation := g.tank.Vegetation()
	for i, c := range g.cells {
		if aquarium.Species(c) != aquarium.Bubble {
			continue
		}
		under := entities[i]
		if under == aquarium.Empty && vegetation != nil {
			under = vegetation.Cells()[i]
		}
		g.cells[i] = uint8(under)
	}
	return g.cells
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.tank.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
