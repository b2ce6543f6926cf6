package loop

import (
	"sync"
	"time"
)

// DefaultRefreshInterval approximates a 60Hz display refresh.
const DefaultRefreshInterval = 16 * time.Millisecond

// Scheduler decouples rendering from state transitions. Frame hands over a
// newly accepted state; Stop terminates the scheduler after the current
// draw, flushing the most recent undrawn state first. Frame is only ever
// called from the dispatch cycle, so implementations need not serialize
// concurrent Frame calls, only Frame against Stop.
type Scheduler[S any] interface {
	Frame(state S)
	Stop()
}

// VSync draws at most once per refresh interval on its own goroutine,
// always rendering the most recently produced state. A slow draw never
// blocks the dispatch cycle; intermediate states produced while a draw is
// in progress are superseded and may never render. The last state handed
// to Frame before Stop is guaranteed to render.
type VSync[S any] struct {
	draw    func(S)
	mailbox chan S
	tick    *time.Ticker
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// NewVSync starts a frame-synchronized scheduler invoking draw at most
// once per refresh period.
func NewVSync[S any](draw func(S), refresh time.Duration) *VSync[S] {
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	v := &VSync[S]{
		draw:    draw,
		mailbox: make(chan S, 1),
		tick:    time.NewTicker(refresh),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go v.run()
	return v
}

func (v *VSync[S]) run() {
	defer close(v.exited)
	for {
		select {
		case <-v.done:
			// Flush: the most recent state must eventually render.
			select {
			case s := <-v.mailbox:
				v.draw(s)
			default:
			}
			return
		case <-v.tick.C:
			select {
			case s := <-v.mailbox:
				v.draw(s)
			default:
				// No new state since the last refresh; skip the frame.
			}
		}
	}
}

// Frame places state in the single-slot mailbox, superseding any state the
// renderer has not picked up yet. Never blocks.
func (v *VSync[S]) Frame(state S) {
	select {
	case v.mailbox <- state:
		return
	default:
	}
	select {
	case <-v.mailbox:
	default:
	}
	select {
	case v.mailbox <- state:
	default:
	}
}

// Stop halts the refresh ticker, waits for the render goroutine to flush
// and exit, and returns. Idempotent.
func (v *VSync[S]) Stop() {
	v.once.Do(func() {
		v.tick.Stop()
		close(v.done)
	})
	<-v.exited
}

// Immediate is a Scheduler that draws synchronously inside the dispatch
// cycle, one draw per accepted frame. It trades render decoupling for
// exact draw counts, which suits batch runs and tests.
type Immediate[S any] struct {
	draw func(S)
}

// NewImmediate returns a synchronous scheduler over draw.
func NewImmediate[S any](draw func(S)) *Immediate[S] {
	return &Immediate[S]{draw: draw}
}

func (i *Immediate[S]) Frame(state S) {
	if i.draw != nil {
		i.draw(state)
	}
}

func (i *Immediate[S]) Stop() {}

// nopScheduler discards every frame; used when no Draw is configured.
type nopScheduler[S any] struct{}

func (nopScheduler[S]) Frame(S) {}
func (nopScheduler[S]) Stop()   {}
