package aquarium

import (
	"fissh/internal/core"
	pcore "fissh/pkg/core"
)

// Layer is one grid of occupants; the tank keeps creatures, bubbles and
// vegetation in separate layers of identical size.
type Layer = core.Grid[Species]

// NewLayer allocates an empty layer.
func NewLayer(rows, cols int) *Layer { return core.NewGrid[Species](rows, cols) }

// Blocked reports whether any of the eight cells around (row, col) holds a
// blocking occupant. The cell itself is not inspected.
func Blocked(g *Layer, row, col int) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if g.At(row+dr, col+dc).Blocking() {
				return true
			}
		}
	}
	return false
}

func vacant(g *Layer, row, col int) bool {
	return g.In(row, col) && g.At(row, col) == Empty && !Blocked(g, row, col)
}

// Outcome describes what a spawn trial did.
type Outcome uint8

const (
	// Skipped means the Bernoulli trial failed and nothing was attempted.
	Skipped Outcome = iota
	// Placed means a new occupant was written.
	Placed
	// Rejected means the trial succeeded but the target cell was taken or crowded.
	Rejected
)

// SpawnSwimming runs the swimmer trial: a random row of the swimmable band,
// the rightmost column, a random variant.
func SpawnSwimming(g *Layer, rnd pcore.Source, p Params) Outcome {
	if !pcore.Chance(rnd, p.SwimChance()) {
		return Skipped
	}
	return placeSwimmer(g, rnd)
}

func placeSwimmer(g *Layer, rnd pcore.Source) Outcome {
	row := rnd.IntN(g.Rows - 2)
	col := g.Cols - 1
	if !vacant(g, row, col) {
		return Rejected
	}
	g.Set(row, col, swimmers[rnd.IntN(len(swimmers))])
	return Placed
}

// SpawnCrawling runs the crawler trial at the bottom-right cell.
func SpawnCrawling(g *Layer, rnd pcore.Source, p Params) Outcome {
	if !pcore.Chance(rnd, p.CrawlChance()) {
		return Skipped
	}
	row, col := g.Rows-1, g.Cols-1
	if !vacant(g, row, col) {
		return Rejected
	}
	g.Set(row, col, Crab)
	return Placed
}

// SpawnBubble runs the bubble trial on the row above the floor at a random
// column. Bubbles only need the cell itself to be free.
func SpawnBubble(b *Layer, rnd pcore.Source, p Params) Outcome {
	if !pcore.Chance(rnd, p.BubbleChance()) {
		return Skipped
	}
	row, col := b.Rows-2, rnd.IntN(b.Cols)
	if b.At(row, col) != Empty {
		return Rejected
	}
	b.Set(row, col, Bubble)
	return Placed
}

// PlantVegetation runs one trial per bottom-row column starting at fromCol.
func PlantVegetation(v *Layer, fromCol int, rnd pcore.Source, p Params) int {
	planted := 0
	bottom := v.Rows - 1
	for col := max(fromCol, 0); col < v.Cols; col++ {
		if pcore.Chance(rnd, p.PlantChance()) {
			v.Set(bottom, col, Seedling)
			planted++
		}
	}
	return planted
}

// MoveCreatures builds the next creature layer from cur. Occupants are
// visited in row-major order and checked against the layer being built, so
// an occupant processed later yields to one already placed. Anything whose
// destination is off-grid, outside its band, taken or crowded is dropped.
func MoveCreatures(cur *Layer, tick uint64, rnd pcore.Source, p Params) *Layer {
	next := NewLayer(cur.Rows, cur.Cols)
	cadence := uint64(max(p.CrawlCadence, 1))
	swimFloor := cur.Rows - 3
	cells := cur.Cells()
	for row := 0; row < cur.Rows; row++ {
		for col := 0; col < cur.Cols; col++ {
			s := cells[cur.Index(row, col)]
			if s == Empty || s == Bubble {
				continue
			}
			if s.Vegetation() {
				next.Set(row, col, s)
				continue
			}
			swimming := s.Swimming()
			if !swimming && tick%cadence != 0 {
				next.Set(row, col, s)
				continue
			}

			newCol := col - 1
			if newCol < 0 {
				continue
			}
			newRow := row
			if swimming && rnd.Float64()*2 < p.Variance {
				if rnd.Float64() < 0.5 {
					newRow--
				} else {
					newRow++
				}
			}

			floor := cur.Rows - 1
			if swimming {
				floor = swimFloor
			}
			if newRow < 0 || newRow > floor {
				continue
			}
			if !vacant(next, newRow, newCol) {
				continue
			}
			next.Set(newRow, newCol, s)
		}
	}
	return next
}

// RiseBubbles lifts every bubble one row; bubbles leaving the top vanish.
func RiseBubbles(cur *Layer) *Layer {
	next := NewLayer(cur.Rows, cur.Cols)
	cells := cur.Cells()
	for row := 1; row < cur.Rows; row++ {
		for col := 0; col < cur.Cols; col++ {
			if cells[cur.Index(row, col)] == Empty {
				continue
			}
			next.Set(row-1, col, Bubble)
		}
	}
	return next
}

// Resize remaps the creature and bubble layers onto rows x cols. The
// overlapping rectangle is copied; crawlers on the old floor are pinned to
// the new floor in the same column; swimmers below the new swimmable band
// and everything outside the overlap are dropped.
func Resize(entities, bubbles *Layer, rows, cols int) (*Layer, *Layer) {
	nextEntities := NewLayer(rows, cols)
	nextBubbles := NewLayer(rows, cols)
	minRows := min(entities.Rows, rows)
	minCols := min(entities.Cols, cols)
	oldBottom := entities.Rows - 1
	newBottom := rows - 1
	swimFloor := rows - 3

	for row := 0; row < minRows; row++ {
		for col := 0; col < minCols; col++ {
			nextBubbles.Set(row, col, bubbles.At(row, col))

			s := entities.At(row, col)
			switch {
			case s == Empty:
			case s.Crawling():
				if row == oldBottom {
					nextEntities.Set(newBottom, col, s)
				}
			case s.Swimming() && row > swimFloor:
			default:
				nextEntities.Set(row, col, s)
			}
		}
	}

	// Shrinking cuts the old floor out of the overlap; its crawlers still land
	// on the new floor.
	if oldBottom >= minRows {
		for col := 0; col < minCols; col++ {
			if s := entities.At(oldBottom, col); s.Crawling() {
				nextEntities.Set(newBottom, col, s)
			}
		}
	}
	return nextEntities, nextBubbles
}

// Replant carries the bottom-row vegetation of old onto a layer of the new
// size and plants freshly exposed columns.
func Replant(old *Layer, rows, cols int, rnd pcore.Source, p Params) *Layer {
	next := NewLayer(rows, cols)
	keep := min(old.Cols, cols)
	for col := 0; col < keep; col++ {
		next.Set(rows-1, col, old.At(old.Rows-1, col))
	}
	PlantVegetation(next, keep, rnd, p)
	return next
}
