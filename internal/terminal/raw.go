package terminal

import (
	"fmt"
	"io"

	"golang.org/x/term"
)

// Fallback size used when the output is not a terminal.
const (
	FallbackRows = 24
	FallbackCols = 80
)

// SizeOr returns the terminal size of fd, or the fallback size when fd is
// not a terminal.
func SizeOr(fd int) (rows, cols int) {
	if !term.IsTerminal(fd) {
		return FallbackRows, FallbackCols
	}
	rows, cols, err := Size(fd)
	if err != nil || rows <= 0 || cols <= 0 {
		return FallbackRows, FallbackCols
	}
	return rows, cols
}

// MakeRaw puts fd into raw mode so Ctrl-C and Ctrl-D arrive as bytes. The
// returned restore func is safe to call when fd was not a terminal.
func MakeRaw(fd int) (restore func() error, err error) {
	if !term.IsTerminal(fd) {
		return func() error { return nil }, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}

// ReadUntilInterrupt consumes r and reports true once it sees Ctrl-C or
// Ctrl-D, or false when r fails first.
func ReadUntilInterrupt(r io.Reader) bool {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 && IsInterrupt(buf[:n]) {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// WatchInput reads r until it sees Ctrl-C or Ctrl-D, or until r fails, and
// then calls stop once.
func WatchInput(r io.Reader, stop func()) {
	ReadUntilInterrupt(r)
	stop()
}

// Restore writes the sequences that undo a stream: cursor visible, attributes
// reset, cursor on a fresh line.
func Restore(w io.Writer) error {
	_, err := io.WriteString(w, ResetAttrs+CursorShow+"\r\n")
	return err
}
