//go:build unix

package terminal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Size returns the terminal size of fd in character rows and columns.
func Size(fd int) (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Row), int(ws.Col), nil
}

// Watch keeps d in sync with the size of fd until ctx is done, refreshing on
// every SIGWINCH.
func Watch(ctx context.Context, fd int, d *Dims) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				if rows, cols, err := Size(fd); err == nil && rows > 0 && cols > 0 {
					d.SetTerminal(rows, cols)
				}
			}
		}
	}()
}
