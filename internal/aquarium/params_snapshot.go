package aquarium

import (
	"strconv"

	"fissh/internal/core"
)

// Parameters reports the active tuning for HUD display.
func (t *Tank) Parameters() core.ParameterSnapshot {
	p := t.params
	groups := []core.ParameterGroup{
		{
			Name: "Tank",
			Params: []core.Parameter{
				intParam("rows", "Rows", t.Rows()),
				intParam("cols", "Columns", t.Cols()),
				intParam("tick", "Tick", int(t.tick)),
			},
		},
		{
			Name: "Spawning",
			Params: []core.Parameter{
				floatParam("variance", "Variance", p.Variance),
				floatParam("crawl_divisor", "Crawl divisor", p.CrawlDivisor),
				floatParam("bubble_divisor", "Bubble divisor", p.BubbleDivisor),
				floatParam("vegetation_divisor", "Vegetation divisor", p.VegetationDivisor),
			},
		},
		{
			Name: "Movement",
			Params: []core.Parameter{
				intParam("crawl_cadence", "Crawl cadence", p.CrawlCadence),
				boolParam("vegetation", "Vegetation", p.Vegetation),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the tunables the HUD may adjust.
func (t *Tank) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "variance", Label: "Variance", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "crawl_divisor", Label: "Crawl divisor", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "bubble_divisor", Label: "Bubble divisor", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "crawl_cadence", Label: "Crawl cadence", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 30, HasMin: true, HasMax: true},
		{Key: "vegetation", Label: "Vegetation", Type: core.ParamTypeBool},
	}
}

// SetFloatParameter updates a floating point tunable, clamping it into range.
func (t *Tank) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "variance":
		t.params.Variance = clampFloat(value, 0, 1)
	case "crawl_divisor":
		t.params.CrawlDivisor = max(value, 1)
	case "bubble_divisor":
		t.params.BubbleDivisor = max(value, 1)
	case "vegetation_divisor":
		t.params.VegetationDivisor = max(value, 1)
	default:
		return false
	}
	return true
}

// SetIntParameter updates an integer tunable.
func (t *Tank) SetIntParameter(key string, value int) bool {
	if key != "crawl_cadence" {
		return false
	}
	t.params.CrawlCadence = max(value, 1)
	return true
}

// SetBoolParameter toggles vegetation, planting or clearing the floor.
func (t *Tank) SetBoolParameter(key string, value bool) bool {
	if key != "vegetation" {
		return false
	}
	if value == t.params.Vegetation {
		return true
	}
	t.params.Vegetation = value
	if !value {
		t.vegetation = nil
		return true
	}
	t.vegetation = NewLayer(t.Rows(), t.Cols())
	PlantVegetation(t.vegetation, 0, t.rnd, t.params)
	return true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
