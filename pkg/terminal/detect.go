// Package terminal binds the bigbang engine to a real terminal: emulator
// capability detection, size queries, raw-mode input decoding, and the
// screen-mode escape helpers the demos use. Input events are published on
// an emitter so that listener sources consume them exactly like any other
// named event target.
package terminal

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown   Terminal = iota
	TermGhostty            // Ghostty (SGR mouse, true color, sync output)
	TermKitty              // Kitty (SGR mouse, kitty keyboard protocol)
	TermWezTerm            // WezTerm
	TermITerm2             // iTerm2
	TermAlacritty          // Alacritty
	TermTmux               // tmux multiplexer
	TermScreen             // GNU Screen multiplexer
	TermVSCode             // VS Code integrated terminal
	TermGeneric            // Unknown terminal with basic capabilities
)

var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermAlacritty: "alacritty",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermVSCode:    "vscode",
	TermGeneric:   "generic",
}

// String returns the human-readable name of the terminal.
func (t Terminal) String() string {
	if int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// SupportsMouseSGR reports whether the terminal supports SGR mouse
// encoding (1006 mode). Multiplexers are excluded: pass-through depends on
// the outer terminal.
func (t Terminal) SupportsMouseSGR() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2, TermAlacritty:
		return true
	default:
		return false
	}
}

// SupportsSyncOutput reports whether the terminal supports synchronized
// output mode (DEC mode 2026) to eliminate flicker during redraws.
func (t Terminal) SupportsSyncOutput() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2, TermAlacritty:
		return true
	default:
		return false
	}
}

// Detect identifies the terminal emulator from environment variables only;
// no terminal I/O is performed. Signals are checked in decreasing order of
// reliability: TERM_PROGRAM, TERM, terminal-specific variables, then
// multiplexers.
func Detect() Terminal {
	if tp := os.Getenv("TERM_PROGRAM"); tp != "" {
		switch strings.ToLower(tp) {
		case "ghostty":
			return TermGhostty
		case "kitty":
			return TermKitty
		case "wezterm":
			return TermWezTerm
		case "iterm.app":
			return TermITerm2
		case "vscode":
			return TermVSCode
		case "alacritty":
			return TermAlacritty
		case "tmux":
			return TermTmux
		}
	}

	if term := os.Getenv("TERM"); term != "" {
		switch {
		case term == "xterm-ghostty":
			return TermGhostty
		case term == "xterm-kitty":
			return TermKitty
		case strings.HasPrefix(term, "alacritty"):
			return TermAlacritty
		case strings.HasPrefix(term, "screen"):
			if os.Getenv("STY") != "" {
				return TermScreen
			}
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return TermKitty
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return TermITerm2
	}
	if os.Getenv("WEZTERM_EXECUTABLE") != "" {
		return TermWezTerm
	}

	// Multiplexers last, so inner-terminal signals take priority.
	if os.Getenv("TMUX") != "" {
		return TermTmux
	}
	if os.Getenv("STY") != "" {
		return TermScreen
	}
	if os.Getenv("LC_TERMINAL") == "iTerm2" {
		return TermITerm2
	}

	return TermGeneric
}

// IsInteractive reports whether f is attached to a terminal, including
// cygwin pseudo-terminals.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorProfile returns the termenv color profile of the attached terminal,
// used by render code to pick a palette depth.
func ColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}
