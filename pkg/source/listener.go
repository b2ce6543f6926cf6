package source

import (
	"sync"
	"time"

	"gitlab.com/tinyland/lab/bigbang/pkg/emitter"
)

// Listener is a Source that subscribes to a named event on an
// emitter.Emitter target and forwards each occurrence. Placement uses the
// same capacity-1 latest-wins mailbox as the Ticker, so a burst of input
// never blocks the emitting goroutine. Distinct listeners on the same
// target and name are fully independent; shutting one down leaves the
// others attached.
type Listener struct {
	category Category
	ch       chan Event
	detach   func()

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// NewListener attaches a handler to target for the named event and returns
// the running source. Every emission becomes an event tagged with category.
func NewListener(category Category, target *emitter.Emitter, name string) *Listener {
	l := &Listener{
		category: category,
		ch:       make(chan Event, 1),
	}
	l.detach = target.On(name, l.receive)
	return l
}

// receive runs on the emitting goroutine. The mutex orders it against
// Shutdown so no placement can race the channel close.
func (l *Listener) receive(payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	deliver(l.ch, Event{Category: l.category, Payload: payload, Time: time.Now()})
}

// Events returns the listener's channel. It closes after Shutdown.
func (l *Listener) Events() <-chan Event { return l.ch }

// Shutdown detaches the handler from the target and closes the event
// channel. An emission already in flight on another goroutine either lands
// before the close or is discarded. Idempotent.
func (l *Listener) Shutdown() {
	l.once.Do(func() {
		l.detach()
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
	})
}
