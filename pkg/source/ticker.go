package source

import (
	"sync"
	"sync/atomic"
	"time"
)

// minTickPeriod guards against a zero or negative period arming a ticker
// that time.NewTicker would reject.
const minTickPeriod = time.Millisecond

// Ticker is a Source that emits a fixed payload at a fixed interval. The
// event channel holds at most one pending tick: if the consumer has not
// drained the previous tick when the timer fires again, the stale tick is
// replaced by the fresh one. The ticker therefore never accumulates backlog;
// a slow consumer observes dropped ticks, never a stall.
type Ticker struct {
	ch      chan Event
	tick    *time.Ticker
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// NewTicker arms a repeating timer with the given period and returns the
// running source. Periods below one millisecond are clamped. The payload is
// carried unchanged on every tick event.
func NewTicker(period time.Duration, payload any) *Ticker {
	if period < minTickPeriod {
		period = minTickPeriod
	}
	t := &Ticker{
		ch:   make(chan Event, 1),
		tick: time.NewTicker(period),
		done: make(chan struct{}),
	}
	go t.run(payload)
	return t
}

func (t *Ticker) run(payload any) {
	defer close(t.ch)
	for {
		select {
		case <-t.done:
			return
		case now := <-t.tick.C:
			// A tick already buffered in tick.C can race a concurrent
			// Shutdown; re-check so no event is emitted after teardown.
			select {
			case <-t.done:
				return
			default:
			}
			ev := Event{Category: CategoryTick, Payload: payload, Time: now}
			if deliver(t.ch, ev) {
				t.dropped.Add(1)
			}
		}
	}
}

// Events returns the tick channel. It closes after Shutdown.
func (t *Ticker) Events() <-chan Event { return t.ch }

// Shutdown cancels the timer and closes the event channel. Idempotent.
func (t *Ticker) Shutdown() {
	t.once.Do(func() {
		t.tick.Stop()
		close(t.done)
	})
}

// Dropped reports how many ticks were discarded because the consumer had
// not drained the previous one.
func (t *Ticker) Dropped() uint64 { return t.dropped.Load() }
