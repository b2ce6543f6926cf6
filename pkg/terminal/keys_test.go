package terminal

import (
	"reflect"
	"testing"
)

func TestDecodeInputPlainKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"lowercase letter", "a", Key{Name: "a", Rune: 'a'}},
		{"uppercase letter", "Q", Key{Name: "Q", Rune: 'Q'}},
		{"digit", "7", Key{Name: "7", Rune: '7'}},
		{"multibyte rune", "é", Key{Name: "é", Rune: 'é'}},
		{"enter cr", "\r", Key{Name: "enter"}},
		{"enter lf", "\n", Key{Name: "enter"}},
		{"tab", "\t", Key{Name: "tab"}},
		{"space", " ", Key{Name: "space", Rune: ' '}},
		{"backspace", "\x7f", Key{Name: "backspace"}},
		{"ctrl+c", "\x03", Key{Name: "ctrl+c"}},
		{"ctrl+z", "\x1a", Key{Name: "ctrl+z"}},
		{"arrow up", "\x1b[A", Key{Name: "up"}},
		{"arrow down", "\x1b[B", Key{Name: "down"}},
		{"arrow right", "\x1b[C", Key{Name: "right"}},
		{"arrow left", "\x1b[D", Key{Name: "left"}},
		{"ss3 arrow up", "\x1bOA", Key{Name: "up"}},
		{"home", "\x1b[H", Key{Name: "home"}},
		{"end", "\x1b[F", Key{Name: "end"}},
		{"alt+x", "\x1bx", Key{Name: "x", Rune: 'x', Alt: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, rest := decodeInput([]byte(tt.input))
			if len(rest) != 0 {
				t.Fatalf("undecoded remainder %q", rest)
			}
			if len(events) != 1 {
				t.Fatalf("decoded %d events, want 1: %v", len(events), events)
			}
			if !reflect.DeepEqual(events[0], tt.want) {
				t.Errorf("decoded %#v, want %#v", events[0], tt.want)
			}
		})
	}
}

func TestDecodeInputSGRMouse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Mouse
	}{
		{"left press", "\x1b[<0;4;2M", Mouse{X: 3, Y: 1, Button: 0, Press: true}},
		{"right release", "\x1b[<2;10;5m", Mouse{X: 9, Y: 4, Button: 2}},
		{"motion no button", "\x1b[<35;7;7M", Mouse{X: 6, Y: 6, Button: -1, Motion: true}},
		{"drag with left", "\x1b[<32;1;1M", Mouse{X: 0, Y: 0, Button: 0, Motion: true}},
		{"wheel up", "\x1b[<64;3;3M", Mouse{X: 2, Y: 2, Button: 4, Press: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, rest := decodeInput([]byte(tt.input))
			if len(rest) != 0 {
				t.Fatalf("undecoded remainder %q", rest)
			}
			if len(events) != 1 {
				t.Fatalf("decoded %d events, want 1: %v", len(events), events)
			}
			got, ok := events[0].(Mouse)
			if !ok {
				t.Fatalf("decoded %#v, want a Mouse event", events[0])
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decoded %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeInputSequenceBurst(t *testing.T) {
	events, rest := decodeInput([]byte("ab\x1b[A\r"))
	if len(rest) != 0 {
		t.Fatalf("undecoded remainder %q", rest)
	}
	want := []any{
		Key{Name: "a", Rune: 'a'},
		Key{Name: "b", Rune: 'b'},
		Key{Name: "up"},
		Key{Name: "enter"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("decoded %#v, want %#v", events, want)
	}
}

func TestDecodeInputKeepsPartialSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare csi introducer", "\x1b["},
		{"partial mouse report", "\x1b[<0;4"},
		{"truncated utf8", "\xc3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, rest := decodeInput([]byte(tt.input))
			if len(events) != 0 {
				t.Errorf("decoded %v from a partial sequence", events)
			}
			if string(rest) != tt.input {
				t.Errorf("remainder = %q, want the full input %q", rest, tt.input)
			}
		})
	}
}

func TestDecodeInputPartialThenCompletion(t *testing.T) {
	// First chunk ends mid-sequence; the remainder plus the second chunk
	// decodes to one event.
	events, rest := decodeInput([]byte("\x1b[<0;4"))
	if len(events) != 0 {
		t.Fatalf("decoded %v early", events)
	}
	events, rest = decodeInput(append(rest, []byte(";2M")...))
	if len(rest) != 0 {
		t.Fatalf("undecoded remainder %q", rest)
	}
	want := Mouse{X: 3, Y: 1, Button: 0, Press: true}
	if len(events) != 1 || !reflect.DeepEqual(events[0], want) {
		t.Errorf("decoded %#v, want [%#v]", events, want)
	}
}

func TestDecodeInputUnknownCSIIsConsumed(t *testing.T) {
	events, rest := decodeInput([]byte("\x1b[5~x"))
	if len(rest) != 0 {
		t.Fatalf("undecoded remainder %q", rest)
	}
	want := []any{Key{Name: "x", Rune: 'x'}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("decoded %#v, want %#v (unknown sequence swallowed)", events, want)
	}
}
