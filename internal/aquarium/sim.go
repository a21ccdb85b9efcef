package aquarium

import (
	"fissh/internal/core"
	pcore "fissh/pkg/core"
)

// Name returns the simulation identifier.
func (t *Tank) Name() string { return "aquarium" }

// Size reports the grid dimensions.
func (t *Tank) Size() core.Size { return core.Size{W: t.Cols(), H: t.Rows()} }

// Reset empties the tank at its current size and reseeds its random source.
func (t *Tank) Reset(seed int64) {
	t.rnd = pcore.NewRNG(seed)
	t.reset(t.Rows(), t.Cols())
	t.SeedSwimmer()
}

// Step advances one tick without resizing.
func (t *Tank) Step() {
	t.Advance(t.Rows(), t.Cols())
}

// NewWithConfig builds a seeded tank from cfg.
func NewWithConfig(cfg Config) (*Tank, error) {
	return NewTank(cfg.Rows, cfg.Cols, cfg.Params, pcore.NewRNG(cfg.Seed))
}

func init() {
	core.Register("aquarium", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		t, err := NewWithConfig(c)
		if err != nil {
			// FromMap only accepts valid sizes and tunables.
			panic(err)
		}
		t.SeedSwimmer()
		return t
	})
	core.Register("aquarium-garden", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		c.Params.Vegetation = true
		t, err := NewWithConfig(c)
		if err != nil {
			panic(err)
		}
		t.SeedSwimmer()
		return t
	})
}
