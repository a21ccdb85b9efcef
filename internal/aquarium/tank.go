package aquarium

import (
	"errors"
	"fmt"

	pcore "fissh/pkg/core"
)

const (
	// MinRows leaves room for the swimmable band, the bubble row and the floor.
	MinRows = 3
	MinCols = 1
)

// ErrViewport reports a viewport too small to simulate.
var ErrViewport = errors.New("aquarium: viewport too small")

// ValidateViewport checks that rows x cols can hold an aquarium.
func ValidateViewport(rows, cols int) error {
	if rows < MinRows || cols < MinCols {
		return fmt.Errorf("%w: %dx%d (need at least %dx%d)", ErrViewport, rows, cols, MinRows, MinCols)
	}
	return nil
}

// Census counts occupants per kind.
type Census struct {
	Swimming   int
	Crawling   int
	Bubbles    int
	Vegetation int
}

// Total returns the number of occupied cells across every layer.
func (c Census) Total() int { return c.Swimming + c.Crawling + c.Bubbles + c.Vegetation }

// SpawnStats accumulates spawn outcomes since the tank was created.
type SpawnStats struct {
	SwimPlaced, SwimRejected     uint64
	CrawlPlaced, CrawlRejected   uint64
	BubblePlaced, BubbleRejected uint64
}

func (s *SpawnStats) record(o Outcome, placed, rejected *uint64) {
	switch o {
	case Placed:
		*placed++
	case Rejected:
		*rejected++
	}
}

// Tank is the state of one aquarium: its layers, its last applied size and
// its tick counter. A tank belongs to a single driver and is not safe for
// concurrent use.
type Tank struct {
	params Params
	rnd    pcore.Source

	entities   *Layer
	bubbles    *Layer
	vegetation *Layer

	tick    uint64
	stats   SpawnStats
	display []uint8
}

// NewTank allocates an empty tank of rows x cols. When vegetation is enabled
// the floor is planted immediately.
func NewTank(rows, cols int, params Params, rnd pcore.Source) (*Tank, error) {
	if err := ValidateViewport(rows, cols); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("aquarium: %w", err)
	}
	if rnd == nil {
		return nil, errors.New("aquarium: nil random source")
	}
	t := &Tank{params: params, rnd: rnd}
	t.reset(rows, cols)
	return t, nil
}

func (t *Tank) reset(rows, cols int) {
	t.entities = NewLayer(rows, cols)
	t.bubbles = NewLayer(rows, cols)
	t.vegetation = nil
	if t.params.Vegetation {
		t.vegetation = NewLayer(rows, cols)
		PlantVegetation(t.vegetation, 0, t.rnd, t.params)
	}
	t.tick = 0
	t.stats = SpawnStats{}
}

// SeedSwimmer places one swimmer without a trial, giving a fresh tank
// something to show on its first frame.
func (t *Tank) SeedSwimmer() bool {
	o := placeSwimmer(t.entities, t.rnd)
	t.stats.record(o, &t.stats.SwimPlaced, &t.stats.SwimRejected)
	return o == Placed
}

// Advance runs one tick at the sampled viewport size and reports whether the
// tank was resized first. A degenerate size is ignored and the last applied
// size kept.
func (t *Tank) Advance(rows, cols int) bool {
	resized := t.Resize(rows, cols)

	t.stats.record(SpawnSwimming(t.entities, t.rnd, t.params), &t.stats.SwimPlaced, &t.stats.SwimRejected)
	t.stats.record(SpawnCrawling(t.entities, t.rnd, t.params), &t.stats.CrawlPlaced, &t.stats.CrawlRejected)
	t.stats.record(SpawnBubble(t.bubbles, t.rnd, t.params), &t.stats.BubblePlaced, &t.stats.BubbleRejected)

	t.bubbles = RiseBubbles(t.bubbles)
	t.entities = MoveCreatures(t.entities, t.tick, t.rnd, t.params)
	t.tick++
	return resized
}

// Resize applies a new viewport without running a tick and reports whether
// the size changed. A degenerate size is ignored.
func (t *Tank) Resize(rows, cols int) bool {
	if (rows == t.Rows() && cols == t.Cols()) || ValidateViewport(rows, cols) != nil {
		return false
	}
	t.resize(rows, cols)
	return true
}

func (t *Tank) resize(rows, cols int) {
	t.entities, t.bubbles = Resize(t.entities, t.bubbles, rows, cols)
	if t.vegetation != nil {
		t.vegetation = Replant(t.vegetation, rows, cols, t.rnd, t.params)
	}
}

// Rows returns the last applied row count.
func (t *Tank) Rows() int { return t.entities.Rows }

// Cols returns the last applied column count.
func (t *Tank) Cols() int { return t.entities.Cols }

// Tick returns how many ticks have run.
func (t *Tank) Tick() uint64 { return t.tick }

// Params returns the active tuning.
func (t *Tank) Params() Params { return t.params }

// Entities exposes the creature layer.
func (t *Tank) Entities() *Layer { return t.entities }

// Bubbles exposes the bubble layer.
func (t *Tank) Bubbles() *Layer { return t.bubbles }

// Vegetation exposes the vegetation layer, nil when disabled.
func (t *Tank) Vegetation() *Layer { return t.vegetation }

// Stats returns spawn outcomes so far.
func (t *Tank) Stats() SpawnStats { return t.stats }

// AppendFrame appends the current frame body to dst.
func (t *Tank) AppendFrame(dst []byte) []byte {
	return AppendFrame(dst, t.entities, t.bubbles, t.vegetation, t.params.Occlusion)
}

// Frame renders the current frame body.
func (t *Tank) Frame() string { return string(t.AppendFrame(nil)) }

// Census counts the current occupants.
func (t *Tank) Census() Census {
	var c Census
	for _, s := range t.entities.Cells() {
		switch {
		case s.Swimming():
			c.Swimming++
		case s.Crawling():
			c.Crawling++
		}
	}
	c.Bubbles = t.bubbles.Count(func(s Species) bool { return s != Empty })
	if t.vegetation != nil {
		c.Vegetation = t.vegetation.Count(func(s Species) bool { return s != Empty })
	}
	return c
}
