package terminal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/cancelreader"

	"gitlab.com/tinyland/lab/bigbang/pkg/emitter"
)

// Input owns a terminal in raw mode and publishes decoded key and mouse
// events on an emitter under EventKeyPress and EventMouseMove. It is the
// terminal counterpart of a DOM event target: listener sources attach to
// the emitter, Input never touches their channels directly.
type Input struct {
	tty    *os.File
	reader cancelreader.CancelReader
	state  *term.State
	target *emitter.Emitter
	log    *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// NewInput switches tty into raw mode and starts the read loop. The caller
// keeps ownership of target and typically attaches listener sources to it
// before starting a loop. Close restores the terminal.
func NewInput(tty *os.File, target *emitter.Emitter, logger *slog.Logger) (*Input, error) {
	if !IsInteractive(tty) {
		return nil, fmt.Errorf("terminal: input requires a tty, got %s", tty.Name())
	}
	state, err := term.MakeRaw(tty.Fd())
	if err != nil {
		return nil, fmt.Errorf("terminal: enter raw mode: %w", err)
	}
	reader, err := cancelreader.NewReader(tty)
	if err != nil {
		_ = term.Restore(tty.Fd(), state)
		return nil, fmt.Errorf("terminal: cancelable reader: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	in := &Input{
		tty:    tty,
		reader: reader,
		state:  state,
		target: target,
		log:    logger,
		closed: make(chan struct{}),
	}
	go in.readLoop()
	return in, nil
}

// readLoop reads raw bytes, decodes them, and emits. It exits when the
// reader is cancelled by Close or the tty reaches EOF.
func (in *Input) readLoop() {
	defer close(in.closed)

	var pending []byte
	chunk := make([]byte, 256)
	for {
		n, err := in.reader.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			var events []any
			events, pending = decodeInput(pending)
			// A chunk ending in a lone ESC is the escape key, not the
			// start of a sequence: terminals deliver full sequences in
			// one write.
			if len(pending) == 1 && pending[0] == 0x1b {
				events = append(events, Key{Name: "esc"})
				pending = pending[:0]
			}
			in.publish(events)
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, cancelreader.ErrCanceled) {
				in.log.Debug("terminal: read loop ended", "error", err)
			}
			return
		}
	}
}

func (in *Input) publish(events []any) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case Key:
			in.target.Emit(EventKeyPress, ev)
		case Mouse:
			in.target.Emit(EventMouseMove, ev)
		}
	}
}

// Closed reports a channel that closes once the read loop has exited.
func (in *Input) Closed() <-chan struct{} { return in.closed }

// Close cancels the read loop and restores the terminal state. Idempotent.
func (in *Input) Close() error {
	var err error
	in.closeOnce.Do(func() {
		in.reader.Cancel()
		<-in.closed
		if rerr := term.Restore(in.tty.Fd(), in.state); rerr != nil {
			err = fmt.Errorf("terminal: restore: %w", rerr)
		}
	})
	return err
}
