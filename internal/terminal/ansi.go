package terminal

// Control sequences written around frames.
const (
	CursorHide  = "\x1b[?25l"
	CursorShow  = "\x1b[?25h"
	CursorHome  = "\x1b[H"
	ClearScreen = "\x1b[2J\x1b[H"
	ResetAttrs  = "\x1b[0m"
)

// Control bytes that end a session.
const (
	ETX byte = 0x03 // Ctrl-C
	EOT byte = 0x04 // Ctrl-D
)

// GlyphWidth is the number of terminal columns one aquarium cell occupies.
const GlyphWidth = 2

// Viewport converts a terminal size in character columns to aquarium cells.
func Viewport(termRows, termCols int) (rows, cols int) {
	return termRows, termCols / GlyphWidth
}

// IsInterrupt reports whether p carries Ctrl-C or Ctrl-D.
func IsInterrupt(p []byte) bool {
	for _, b := range p {
		if b == ETX || b == EOT {
			return true
		}
	}
	return false
}
