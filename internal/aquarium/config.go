package aquarium

import (
	"fmt"
	"strconv"
)

// Params holds the tunable probabilities and cadences of the aquarium.
type Params struct {
	// Variance is the swimming spawn probability; every other trial derives
	// from it through a divisor.
	Variance float64

	CrawlDivisor      float64
	BubbleDivisor     float64
	VegetationDivisor float64

	// CrawlCadence is the tick period at which crawlers step left.
	CrawlCadence int

	Vegetation bool
	Occlusion  Occlusion
}

// Config controls the aquarium dimensions and seeding.
type Config struct {
	Rows int
	Cols int

	Seed int64

	Params Params
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Variance:          0.15,
		CrawlDivisor:      6,
		BubbleDivisor:     2,
		VegetationDivisor: 4,
		CrawlCadence:      3,
		Vegetation:        false,
		Occlusion:         OcclusionVegetationFirst,
	}
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Rows:   24,
		Cols:   40,
		Seed:   1337,
		Params: DefaultParams(),
	}
}

// SwimChance is the per-tick probability of a new swimmer.
func (p Params) SwimChance() float64 { return p.Variance }

// CrawlChance is the per-tick probability of a new crawler.
func (p Params) CrawlChance() float64 { return ratio(p.Variance, p.CrawlDivisor) }

// BubbleChance is the per-tick probability of a new bubble.
func (p Params) BubbleChance() float64 { return ratio(p.Variance, p.BubbleDivisor) }

// PlantChance is the per-column probability of vegetation at setup.
func (p Params) PlantChance() float64 { return ratio(p.Variance, p.VegetationDivisor) }

func ratio(v, div float64) float64 {
	if div <= 0 {
		return 0
	}
	return v / div
}

// Validate reports the first out-of-range tunable.
func (p Params) Validate() error {
	if p.Variance < 0 || p.Variance > 1 {
		return fmt.Errorf("variance %v outside [0,1]", p.Variance)
	}
	if p.CrawlDivisor <= 0 {
		return fmt.Errorf("crawl divisor must be positive, got %v", p.CrawlDivisor)
	}
	if p.BubbleDivisor <= 0 {
		return fmt.Errorf("bubble divisor must be positive, got %v", p.BubbleDivisor)
	}
	if p.VegetationDivisor <= 0 {
		return fmt.Errorf("vegetation divisor must be positive, got %v", p.VegetationDivisor)
	}
	if p.CrawlCadence < 1 {
		return fmt.Errorf("crawl cadence must be at least 1, got %d", p.CrawlCadence)
	}
	return nil
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
// Unparseable or out-of-range values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["rows"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= MinRows {
			c.Rows = parsed
		}
	}
	if v, ok := cfg["cols"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= MinCols {
			c.Cols = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["variance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.Variance = parsed
		}
	}
	if v, ok := cfg["crawl_divisor"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Params.CrawlDivisor = parsed
		}
	}
	if v, ok := cfg["bubble_divisor"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Params.BubbleDivisor = parsed
		}
	}
	if v, ok := cfg["vegetation_divisor"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Params.VegetationDivisor = parsed
		}
	}
	if v, ok := cfg["crawl_cadence"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			c.Params.CrawlCadence = parsed
		}
	}
	if v, ok := cfg["vegetation"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Params.Vegetation = parsed
		}
	}
	if v, ok := cfg["occlusion"]; ok {
		if parsed, err := ParseOcclusion(v); err == nil {
			c.Params.Occlusion = parsed
		}
	}
	return c
}
