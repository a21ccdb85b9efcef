package terminal

import "sync"

// Dims is the current viewport of one session. Transports Set it from resize
// notifications on their own goroutines; the scheduler reads it once per tick.
type Dims struct {
	mu         sync.RWMutex
	rows, cols int
}

// NewDims returns a Dims holding rows x cols.
func NewDims(rows, cols int) *Dims {
	return &Dims{rows: rows, cols: cols}
}

// Set replaces the stored viewport.
func (d *Dims) Set(rows, cols int) {
	d.mu.Lock()
	d.rows, d.cols = rows, cols
	d.mu.Unlock()
}

// SetTerminal stores a terminal size given in character columns.
func (d *Dims) SetTerminal(termRows, termCols int) {
	d.Set(Viewport(termRows, termCols))
}

// Get returns the stored viewport. Its signature matches the dimension query
// schedulers take.
func (d *Dims) Get() (rows, cols int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rows, d.cols
}
