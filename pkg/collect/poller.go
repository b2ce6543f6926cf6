// Package collect produces events from asynchronous data fetches. A Poller
// runs a fetch function on an interval in its own goroutine and exposes the
// results as a channel source, so a loop treats "the latest metrics
// arrived" exactly like a tick or a keypress.
package collect

import (
	"context"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/bigbang/pkg/source"
)

// minPollInterval guards against a zero or negative interval arming a
// ticker that time.NewTicker would reject.
const minPollInterval = time.Millisecond

// FetchFunc performs one asynchronous fetch. It runs outside the dispatch
// cycle; the context is cancelled when the poller shuts down.
type FetchFunc func(ctx context.Context) (any, error)

// Result is the payload of every event a Poller emits. A failed fetch is
// delivered as a Result with Err set rather than terminating the source:
// the transition function decides what a fetch failure means for the world.
type Result struct {
	Data    any
	Err     error
	Elapsed time.Duration
	At      time.Time
}

// Poller is a Source that fetches on an interval. The event channel is a
// capacity-1 latest-wins mailbox like the ticker's: if the loop has not
// consumed the previous result when a new one lands, the stale result is
// superseded.
type Poller struct {
	category source.Category
	fetch    FetchFunc
	interval time.Duration

	ch     chan source.Event
	cancel context.CancelFunc
	once   sync.Once
}

// NewPoller starts fetching immediately and then on every interval. The
// first fetch fires without waiting for the interval so a freshly started
// loop gets data on its first frames. Intervals below one millisecond are
// clamped.
func NewPoller(category source.Category, interval time.Duration, fetch FetchFunc) *Poller {
	if interval < minPollInterval {
		interval = minPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		category: category,
		fetch:    fetch,
		interval: interval,
		ch:       make(chan source.Event, 1),
		cancel:   cancel,
	}
	go p.run(ctx)
	return p
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.ch)

	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		p.fetchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	start := time.Now()
	data, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// Shut down mid-fetch; the result has no consumer anymore.
		return
	}
	ev := source.Event{
		Category: p.category,
		Payload: Result{
			Data:    data,
			Err:     err,
			Elapsed: time.Since(start),
			At:      start,
		},
		Time: time.Now(),
	}
	select {
	case p.ch <- ev:
		return
	default:
	}
	select {
	case <-p.ch:
	default:
	}
	select {
	case p.ch <- ev:
	default:
	}
}

// Events returns the result channel. It closes after Shutdown.
func (p *Poller) Events() <-chan source.Event { return p.ch }

// Shutdown cancels the fetch context and closes the channel once the
// current fetch, if any, returns. Idempotent.
func (p *Poller) Shutdown() {
	p.once.Do(p.cancel)
}
