package aquarium

import "fmt"

// Species identifies what occupies a cell. The zero value is an empty cell.
type Species uint8

const (
	Empty Species = iota
	Fish
	TropicalFish
	Blowfish
	Crab
	Seedling
	Bubble
)

// EmptyGlyph fills an unoccupied cell; it matches the double width of the
// emoji glyphs so rows stay aligned.
const EmptyGlyph = "  "

var swimmers = [...]Species{Fish, TropicalFish, Blowfish}

var glyphs = [...]string{
	Empty:        EmptyGlyph,
	Fish:         "🐟",
	TropicalFish: "🐠",
	Blowfish:     "🐡",
	Crab:         "🦀",
	Seedling:     "🌱",
	Bubble:       "🫧",
}

var names = [...]string{
	Empty:        "empty",
	Fish:         "fish",
	TropicalFish: "tropical-fish",
	Blowfish:     "blowfish",
	Crab:         "crab",
	Seedling:     "seedling",
	Bubble:       "bubble",
}

// Swimming reports whether s drifts through the upper band.
func (s Species) Swimming() bool {
	return s == Fish || s == TropicalFish || s == Blowfish
}

// Crawling reports whether s walks along the bottom row.
func (s Species) Crawling() bool { return s == Crab }

// Vegetation reports whether s is static plant life.
func (s Species) Vegetation() bool { return s == Seedling }

// Blocking reports whether s prevents neighbours from being placed next to it.
func (s Species) Blocking() bool { return s != Empty && s != Seedling }

// Glyph returns the terminal representation of s.
func (s Species) Glyph() string {
	if int(s) >= len(glyphs) {
		return EmptyGlyph
	}
	return glyphs[s]
}

func (s Species) String() string {
	if int(s) >= len(names) {
		return fmt.Sprintf("species(%d)", uint8(s))
	}
	return names[s]
}

// Swimmers lists the interchangeable swimming variants.
func Swimmers() []Species { return swimmers[:] }

// Occlusion selects which layer wins when several occupy the same cell.
type Occlusion uint8

const (
	// OcclusionVegetationFirst draws vegetation over bubbles over creatures.
	OcclusionVegetationFirst Occlusion = iota
	// OcclusionBubblesFirst draws bubbles over creatures over vegetation.
	OcclusionBubblesFirst
)

// ParseOcclusion maps a configuration string onto an Occlusion.
func ParseOcclusion(v string) (Occlusion, error) {
	switch v {
	case "", "vegetation", "vegetation-first":
		return OcclusionVegetationFirst, nil
	case "bubbles", "bubbles-first":
		return OcclusionBubblesFirst, nil
	default:
		return 0, fmt.Errorf("unknown occlusion order %q", v)
	}
}

func (o Occlusion) String() string {
	if o == OcclusionBubblesFirst {
		return "bubbles-first"
	}
	return "vegetation-first"
}
