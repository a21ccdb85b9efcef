package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"fissh/internal/aquarium"
	pcore "fissh/pkg/core"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func stillParams() aquarium.Params {
	p := aquarium.DefaultParams()
	p.Variance = 0
	return p
}

func TestViewerSizesTankFromScreen(t *testing.T) {
	screen := simScreen(t, 20, 6)
	v, err := New(screen, stillParams(), pcore.NewRNG(1), time.Hour, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if v.Tank().Rows() != 6 || v.Tank().Cols() != 10 {
		t.Fatalf("tank is %dx%d, want 6x10", v.Tank().Rows(), v.Tank().Cols())
	}
}

func TestViewerRejectsTinyScreen(t *testing.T) {
	screen := simScreen(t, 20, 2)
	if _, err := New(screen, stillParams(), pcore.NewRNG(1), time.Hour, quiet()); err == nil {
		t.Fatal("expected viewport error")
	}
}

func TestDrawPlacesGlyphsOnDoubleColumns(t *testing.T) {
	screen := simScreen(t, 20, 6)
	v, err := New(screen, stillParams(), pcore.NewRNG(1), time.Hour, quiet())
	if err != nil {
		t.Fatal(err)
	}
	v.Draw()

	cells := v.Tank().Cells()
	cols := v.Tank().Cols()
	found := false
	for i, code := range cells {
		s := aquarium.Species(code)
		if s == aquarium.Empty {
			continue
		}
		found = true
		want := []rune(s.Glyph())[0]
		got, _, _, _ := screen.GetContent((i%cols)*2, i/cols)
		if got != want {
			t.Fatalf("cell %d shows %q, want %q", i, got, want)
		}
	}
	if !found {
		t.Fatal("the seeded swimmer should be visible")
	}
}

func TestStepFollowsScreenResize(t *testing.T) {
	screen := simScreen(t, 20, 6)
	v, err := New(screen, stillParams(), pcore.NewRNG(1), time.Hour, quiet())
	if err != nil {
		t.Fatal(err)
	}
	screen.SetSize(30, 9)
	v.Step()
	if v.Tank().Rows() != 9 || v.Tank().Cols() != 15 {
		t.Fatalf("tank is %dx%d after resize, want 9x15", v.Tank().Rows(), v.Tank().Cols())
	}
}

func TestRunStopsOnQuitKeys(t *testing.T) {
	for _, key := range []struct {
		name string
		k    tcell.Key
		r    rune
	}{
		{"esc", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
		{"ctrl-d", tcell.KeyCtrlD, 0},
		{"q", tcell.KeyRune, 'q'},
	} {
		t.Run(key.name, func(t *testing.T) {
			screen := simScreen(t, 20, 6)
			v, err := New(screen, stillParams(), pcore.NewRNG(1), time.Millisecond, quiet())
			if err != nil {
				t.Fatal(err)
			}
			done := make(chan error, 1)
			go func() { done <- v.Run(context.Background()) }()
			screen.InjectKey(key.k, key.r, tcell.ModNone)
			select {
			case err := <-done:
				if err != nil {
					t.Fatal(err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("viewer did not quit")
			}
		})
	}
}

func TestRunStopsOnContext(t *testing.T) {
	screen := simScreen(t, 20, 6)
	v, err := New(screen, stillParams(), pcore.NewRNG(1), time.Millisecond, quiet())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("viewer ignored cancellation")
	}
	if v.Tank().Tick() == 0 {
		t.Fatal("expected the tank to have advanced")
	}
}
