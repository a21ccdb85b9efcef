//go:build !unix

package terminal

import (
	"context"
	"time"

	"golang.org/x/term"
)

// Size returns the terminal size of fd in character rows and columns.
func Size(fd int) (rows, cols int, err error) {
	cols, rows, err = term.GetSize(fd)
	return rows, cols, err
}

// Watch keeps d in sync with the size of fd until ctx is done. Without
// SIGWINCH the size is polled.
func Watch(ctx context.Context, fd int, d *Dims) {
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rows, cols, err := Size(fd); err == nil && rows > 0 && cols > 0 {
					d.SetTerminal(rows, cols)
				}
			}
		}
	}()
}
