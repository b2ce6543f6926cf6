package terminal

import (
	"fmt"
	"unicode/utf8"
)

// Event names under which decoded input is published on the emitter.
// Listener sources subscribe to these the way a browser handler subscribes
// to a DOM event name.
const (
	EventKeyPress  = "keypress"
	EventMouseMove = "mousemove"
)

// Key is the payload of a keypress event.
type Key struct {
	// Name is the canonical key name: "a", "enter", "up", "ctrl+c",
	// "esc", "space", "backspace", "tab".
	Name string

	// Rune is the printable rune for character keys, zero otherwise.
	Rune rune

	// Alt reports that the key arrived with the alt modifier.
	Alt bool
}

// Mouse is the payload of a mousemove event, decoded from SGR (1006mode)
// reports. Coordinates are zero-based cells.
type Mouse struct {
	X, Y   int
	Button int  // 0 left, 1 middle, 2 right, 4/5 wheel; -1 when unknown
	Press  bool // button press (as opposed to release)
	Motion bool // motion report, possibly with a button held
}

// decodeInput consumes as many complete input events as buf holds and
// returns them with the undecoded remainder (a partial escape sequence or
// truncated UTF-8 rune). A remainder consisting of a single bare ESC is
// returned as-is; the read loop flushes it as an "esc" key when no
// continuation arrives.
func decodeInput(buf []byte) (events []any, rest []byte) {
	for len(buf) > 0 {
		ev, n := decodeOne(buf)
		if n == 0 {
			break
		}
		if ev != nil {
			events = append(events, ev)
		}
		buf = buf[n:]
	}
	return events, buf
}

// decodeOne decodes the first event in buf. n == 0 means the buffer holds
// only a prefix of a sequence and more bytes are needed. A nil event with
// n > 0 means n bytes were consumed but produced nothing we report
// (unrecognized sequences).
func decodeOne(buf []byte) (ev any, n int) {
	switch b := buf[0]; {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r' || b == '\n':
		return Key{Name: "enter"}, 1
	case b == '\t':
		return Key{Name: "tab"}, 1
	case b == 0x7f || b == 0x08:
		return Key{Name: "backspace"}, 1
	case b == ' ':
		return Key{Name: "space", Rune: ' '}, 1
	case b < 0x20:
		if b == 0 {
			return nil, 1
		}
		return Key{Name: fmt.Sprintf("ctrl+%c", 'a'+b-1)}, 1
	default:
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 && !utf8.FullRune(buf) {
			return nil, 0
		}
		return Key{Name: string(r), Rune: r}, size
	}
}

// decodeEscape handles sequences starting with ESC: CSI, SS3, alt-prefixed
// runes, and the bare escape key.
func decodeEscape(buf []byte) (ev any, n int) {
	if len(buf) == 1 {
		return nil, 0
	}
	switch buf[1] {
	case '[':
		return decodeCSI(buf)
	case 'O':
		if len(buf) < 3 {
			return nil, 0
		}
		if name, ok := arrowName(buf[2]); ok {
			return Key{Name: name}, 3
		}
		return nil, 3
	case 0x1b:
		return Key{Name: "esc"}, 1
	default:
		// Alt-prefixed key: decode the tail as a plain key.
		tail, size := decodeOne(buf[1:])
		if size == 0 {
			return nil, 0
		}
		if k, ok := tail.(Key); ok {
			k.Alt = true
			return k, size + 1
		}
		return tail, size + 1
	}
}

// decodeCSI handles ESC [ ... sequences: cursor keys, home/end, and SGR
// mouse reports. Unrecognized sequences are consumed silently.
func decodeCSI(buf []byte) (ev any, n int) {
	// Find the final byte (0x40..0x7e).
	end := -1
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, 0
	}
	params := buf[2:end]
	final := buf[end]
	n = end + 1

	switch final {
	case 'A', 'B', 'C', 'D':
		if name, ok := arrowName(final); ok && len(params) == 0 {
			return Key{Name: name}, n
		}
		return nil, n
	case 'H':
		return Key{Name: "home"}, n
	case 'F':
		return Key{Name: "end"}, n
	case 'M', 'm':
		if len(params) > 0 && params[0] == '<' {
			if m, ok := decodeSGRMouse(params[1:], final == 'M'); ok {
				return m, n
			}
		}
		return nil, n
	default:
		return nil, n
	}
}

func arrowName(b byte) (string, bool) {
	switch b {
	case 'A':
		return "up", true
	case 'B':
		return "down", true
	case 'C':
		return "right", true
	case 'D':
		return "left", true
	}
	return "", false
}

// decodeSGRMouse parses the "b;x;y" parameters of an SGR mouse report.
// press is true when the final byte was 'M'.
func decodeSGRMouse(params []byte, press bool) (Mouse, bool) {
	var nums [3]int
	idx := 0
	for _, c := range params {
		switch {
		case c >= '0' && c <= '9':
			nums[idx] = nums[idx]*10 + int(c-'0')
		case c == ';':
			idx++
			if idx > 2 {
				return Mouse{}, false
			}
		default:
			return Mouse{}, false
		}
	}
	if idx != 2 {
		return Mouse{}, false
	}

	b := nums[0]
	m := Mouse{
		X:      nums[1] - 1,
		Y:      nums[2] - 1,
		Motion: b&32 != 0,
	}
	switch {
	case b&64 != 0:
		m.Button = 4 + b&3
	case b&3 == 3:
		m.Button = -1
	default:
		m.Button = b & 3
	}
	m.Press = press && !m.Motion && m.Button >= 0
	return m, true
}
