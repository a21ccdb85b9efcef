// Package tui shows an aquarium full-screen through tcell instead of raw
// escape sequences.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"fissh/internal/aquarium"
	"fissh/internal/terminal"
	pcore "fissh/pkg/core"
)

// Viewer owns a screen and the tank drawn on it.
type Viewer struct {
	screen   tcell.Screen
	tank     *aquarium.Tank
	interval time.Duration
	logger   *slog.Logger
	water    tcell.Style
}

// New sizes a tank to screen, which must already be initialised.
func New(screen tcell.Screen, params aquarium.Params, src pcore.Source, interval time.Duration, logger *slog.Logger) (*Viewer, error) {
	if screen == nil {
		return nil, errors.New("tui: nil screen")
	}
	if interval <= 0 {
		return nil, errors.New("tui: interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	rows, cols := viewport(screen)
	tank, err := aquarium.NewTank(rows, cols, params, src)
	if err != nil {
		return nil, err
	}
	tank.SeedSwimmer()

	bg := tank.Palette()[aquarium.Empty]
	water := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	return &Viewer{
		screen:   screen,
		tank:     tank,
		interval: interval,
		logger:   logger,
		water:    water,
	}, nil
}

func viewport(screen tcell.Screen) (rows, cols int) {
	w, h := screen.Size()
	return terminal.Viewport(h, w)
}

// Tank returns the tank being shown.
func (v *Viewer) Tank() *aquarium.Tank { return v.tank }

// Step advances the tank to the current screen size and redraws.
func (v *Viewer) Step() {
	rows, cols := viewport(v.screen)
	if v.tank.Advance(rows, cols) {
		v.logger.Debug("screen resized", "rows", v.tank.Rows(), "cols", v.tank.Cols())
	}
	v.Draw()
}

// Draw paints every cell's glyph, advancing by each rune's display width.
func (v *Viewer) Draw() {
	v.screen.Clear()
	cells := v.tank.Cells()
	cols := v.tank.Cols()
	for i, code := range cells {
		row, col := i/cols, i%cols
		x := col * terminal.GlyphWidth
		for _, r := range aquarium.Species(code).Glyph() {
			v.screen.SetContent(x, row, r, nil, v.water)
			x += max(runewidth.RuneWidth(r), 1)
		}
	}
	v.screen.Show()
}

// quitKey reports whether ev ends the viewer.
func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlD:
		return true
	case tcell.KeyRune:
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			return r == 'c' || r == 'd'
		}
		return r == 'q'
	}
	return false
}

// Run draws a frame every interval until ctx is done or a quit key arrives.
// It does not finalise the screen.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	v.Draw()
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quitKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
		case <-ticker.C:
			v.Step()
		}
	}
}

// Open creates and initialises the terminal screen, runs a viewer on it and
// restores the terminal on return.
func Open(ctx context.Context, params aquarium.Params, src pcore.Source, interval time.Duration, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	v, err := New(screen, params, src, interval, logger)
	if err != nil {
		return err
	}
	return v.Run(ctx)
}
