package core

// Grid stores a 2D grid of cell values in row-major order. Reads outside the
// grid return the zero value and writes outside it are ignored, so neighbour
// scans near the edges need no special casing.
type Grid[T comparable] struct {
	Rows, Cols int
	data       []T
}

// NewGrid allocates a grid with the given dimensions, every cell zero.
func NewGrid[T comparable](rows, cols int) *Grid[T] {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid[T]{Rows: rows, Cols: cols, data: make([]T, rows*cols)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Index returns the linear slice index for coordinates (row, col).
func (g *Grid[T]) Index(row, col int) int { return row*g.Cols + col }

// In reports whether (row, col) lies inside the grid.
func (g *Grid[T]) In(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// At returns the value at (row, col), or the zero value when out of range.
func (g *Grid[T]) At(row, col int) T {
	if !g.In(row, col) {
		var zero T
		return zero
	}
	return g.data[g.Index(row, col)]
}

// Set stores v at (row, col) and reports whether the write landed.
func (g *Grid[T]) Set(row, col int, v T) bool {
	if !g.In(row, col) {
		return false
	}
	g.data[g.Index(row, col)] = v
	return true
}

// Clear fills the grid with zeros.
func (g *Grid[T]) Clear() {
	clear(g.data)
}

// Count returns how many cells satisfy keep.
func (g *Grid[T]) Count(keep func(T) bool) int {
	n := 0
	for _, v := range g.data {
		if keep(v) {
			n++
		}
	}
	return n
}
