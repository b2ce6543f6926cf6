package terminal

import (
	"fmt"
	"io"
)

// Screen drives the escape-sequence modes a full-screen demo needs: the
// alternate screen buffer, cursor visibility, and SGR mouse reporting.
// Every mode it enables is disabled again by Exit, in reverse order, so a
// crashed demo leaves the terminal usable.
type Screen struct {
	w     io.Writer
	mouse bool
}

// NewScreen wraps the terminal's write side.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Enter switches to the alternate screen, hides the cursor, and, when
// withMouse is set, enables SGR any-motion mouse reporting.
func (s *Screen) Enter(withMouse bool) {
	fmt.Fprint(s.w, "\x1b[?1049h\x1b[?25l")
	if withMouse {
		fmt.Fprint(s.w, "\x1b[?1003h\x1b[?1006h")
		s.mouse = true
	}
}

// Exit restores the terminal: mouse reporting off, cursor shown, primary
// screen buffer back.
func (s *Screen) Exit() {
	if s.mouse {
		fmt.Fprint(s.w, "\x1b[?1006l\x1b[?1003l")
		s.mouse = false
	}
	fmt.Fprint(s.w, "\x1b[?25h\x1b[?1049l")
}

// Clear erases the screen and homes the cursor.
func (s *Screen) Clear() {
	fmt.Fprint(s.w, "\x1b[2J\x1b[H")
}

// MoveTo positions the cursor at the given zero-based cell.
func (s *Screen) MoveTo(x, y int) {
	fmt.Fprintf(s.w, "\x1b[%d;%dH", y+1, x+1)
}
