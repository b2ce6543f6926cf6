// Package source defines the channel-source abstraction at the heart of the
// bigbang engine: an event producer that exposes a consumable channel and an
// idempotent shutdown operation. The loop driver consumes any number of
// sources concurrently; each source owns its underlying resource (timer,
// listener registration, fetch goroutine) and releases it on shutdown.
//
// All sources guarantee that Shutdown stops new production and eventually
// closes the event channel, so a consumer blocked on a receive is released
// rather than stuck forever.
package source

import (
	"sync"
	"time"
)

// Category tags an event with the kind of producer that emitted it. The loop
// driver selects the transition function to apply based on this tag.
// Applications may define their own categories for custom sources; the
// engine treats the value as opaque.
type Category string

// Built-in categories recognized by the loop driver's typed options.
const (
	CategoryTick  Category = "tick"
	CategoryKey   Category = "key"
	CategoryMouse Category = "mouse"
)

// Event is a single occurrence delivered by a Source. Payload is opaque to
// the engine; only the transition function registered for the event's
// category interprets it.
type Event struct {
	Category Category
	Payload  any
	Time     time.Time
}

// Source is an event producer. Events returns the receive side of the
// source's channel; the channel is closed once the source has shut down and
// drained. Shutdown is idempotent: it stops the underlying producer,
// releases its resources, and causes the channel to close. Calling Shutdown
// more than once is a no-op.
type Source interface {
	Events() <-chan Event
	Shutdown()
}

// deliver places ev into a capacity-1 mailbox channel with latest-wins
// semantics: if a previous event is still pending, it is evicted and
// replaced. The send never blocks, so producers running on their own
// goroutines (timer fires, emitter callbacks) are never stalled by a slow
// consumer; they observe dropped events instead.
//
// Only the owning producer may call deliver on a given channel.
func deliver(ch chan Event, ev Event) (dropped bool) {
	select {
	case ch <- ev:
		return false
	default:
	}
	// Slot occupied: evict the stale event and retry. The consumer may have
	// drained the slot in between, in which case the eviction is a no-op.
	select {
	case <-ch:
		dropped = true
	default:
	}
	select {
	case ch <- ev:
	default:
	}
	return dropped
}

// external adapts an externally constructed channel into a Source. Unlike
// the engine's own producers it forwards every value without dropping: the
// upstream producer controls its own pacing and buffering.
type external struct {
	out  chan Event
	done chan struct{}
	stop func()
	once sync.Once
}

// Wrap adapts an arbitrary externally produced channel into a Source under
// the given category. Each received value becomes an event payload. stop,
// which may be nil, is invoked exactly once on shutdown to halt the upstream
// producer (for example by cancelling its context). The returned source's
// channel closes when the upstream channel closes or when Shutdown is
// called, whichever comes first.
func Wrap[T any](category Category, ch <-chan T, stop func()) Source {
	e := &external{
		out:  make(chan Event, 1),
		done: make(chan struct{}),
		stop: stop,
	}
	go forward(e, category, ch)
	return e
}

func forward[T any](e *external, category Category, ch <-chan T) {
	defer close(e.out)
	for {
		select {
		case <-e.done:
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			ev := Event{Category: category, Payload: v, Time: time.Now()}
			select {
			case <-e.done:
				return
			case e.out <- ev:
			}
		}
	}
}

func (e *external) Events() <-chan Event { return e.out }

func (e *external) Shutdown() {
	e.once.Do(func() {
		if e.stop != nil {
			e.stop()
		}
		close(e.done)
	})
}
