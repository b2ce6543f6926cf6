// Package loop implements the bigbang engine: a sequential dispatch cycle
// that merges events from any number of concurrently running channel
// sources, threads an immutable world state through pure transition
// functions, and hands each accepted state to a frame scheduler for
// rendering.
//
// The driver applies exactly one transition at a time. Producers run on
// their own goroutines and hand events over only through their sources'
// bounded channels, so the world state is owned exclusively by the dispatch
// cycle and never mutated concurrently.
package loop

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/tinyland/lab/bigbang/pkg/source"
)

// DefaultTickInterval is the tick period used when Options.TickInterval is
// zero, roughly one tick per 60Hz display frame.
const DefaultTickInterval = 17 * time.Millisecond

// ErrNoSources is returned by Run when the options subscribe to nothing:
// no tick transition and no explicit sources means the loop could never
// receive an event.
var ErrNoSources = errors.New("loop: no event sources configured")

// Transition advances the world state in response to one event. It must be
// pure: compute a new state from the current one, never mutate shared data,
// never block. A returned error (or a panic) terminates the loop.
type Transition[S any] func(state S, ev source.Event) (S, error)

// Options configures a loop run. Initial is the starting world state; the
// zero value of S is used when left unset. Transition categories the
// application does not opt into default to identity: an event of that
// category is accepted and counted but leaves the state unchanged. That
// lenient default is the contract, not an error.
type Options[S any] struct {
	// Initial is the world state before any event.
	Initial S

	// OnTick handles the engine's own ticker events. When nil, no ticker
	// is constructed.
	OnTick Transition[S]

	// OnKey and OnMouse handle key and mouse events arriving from sources
	// listed in Sources (typically terminal input listeners).
	OnKey   Transition[S]
	OnMouse Transition[S]

	// OnEvent maps additional categories, such as custom external feeds,
	// to their transitions.
	OnEvent map[source.Category]Transition[S]

	// Draw renders a state. Invocations are scheduled through the frame
	// Scheduler, never called concurrently with each other. Nil disables
	// rendering.
	Draw func(S)

	// StopWhen terminates the loop once it reports true for a newly
	// produced state. The stopping state is not rendered.
	StopWhen func(S) bool

	// MaxFrames caps the number of rendered frames; the loop terminates
	// as soon as the cap is reached. Zero means unlimited.
	MaxFrames int

	// TickInterval is the ticker period; zero selects
	// DefaultTickInterval. Ignored when OnTick is nil.
	TickInterval time.Duration

	// RefreshInterval is the display refresh period for the default
	// frame scheduler; zero selects DefaultRefreshInterval.
	RefreshInterval time.Duration

	// Sources lists additional channel sources to merge: input
	// listeners, pollers, externally wrapped channels. The loop shuts
	// every one of them down on termination.
	Sources []source.Source

	// Scheduler overrides the frame scheduler. Nil selects a VSync
	// scheduler over Draw at RefreshInterval.
	Scheduler Scheduler[S]

	// Logger receives debug-level dispatch diagnostics. Nil disables
	// logging.
	Logger *slog.Logger
}

// Loop is the handle to a running engine instance.
type Loop[S any] struct {
	opts    Options[S]
	sources []source.Source
	sched   Scheduler[S]
	log     *slog.Logger

	dispatch chan source.Event
	stopReq  chan struct{}
	quit     chan struct{}
	done     chan struct{}

	stopOnce sync.Once
	downOnce sync.Once

	frames atomic.Int64

	// err and final are written by the driver before done closes.
	err   error
	final S
}

// Run validates opts, subscribes the configured sources, and starts the
// dispatch cycle on its own goroutine. The returned handle exposes
// Shutdown for external termination and Wait/Done/Err for observing the
// outcome.
func Run[S any](opts Options[S]) (*Loop[S], error) {
	l := &Loop[S]{
		opts:     opts,
		dispatch: make(chan source.Event),
		stopReq:  make(chan struct{}),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      opts.Logger,
	}
	if l.log == nil {
		l.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opts.OnTick != nil {
		interval := opts.TickInterval
		if interval == 0 {
			interval = DefaultTickInterval
		}
		l.sources = append(l.sources, source.NewTicker(interval, nil))
	}
	l.sources = append(l.sources, opts.Sources...)
	if len(l.sources) == 0 {
		return nil, ErrNoSources
	}

	l.sched = opts.Scheduler
	if l.sched == nil {
		if opts.Draw != nil {
			refresh := opts.RefreshInterval
			if refresh == 0 {
				refresh = DefaultRefreshInterval
			}
			l.sched = NewVSync(opts.Draw, refresh)
		} else {
			l.sched = nopScheduler[S]{}
		}
	}

	// One forwarder per source funnels its events into the dispatch
	// channel, preserving that source's order. When every forwarder has
	// drained, the dispatch channel closes and the driver sees the merged
	// stream as exhausted.
	var wg sync.WaitGroup
	for _, src := range l.sources {
		wg.Add(1)
		go func(s source.Source) {
			defer wg.Done()
			for ev := range s.Events() {
				select {
				case l.dispatch <- ev:
				case <-l.quit:
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(l.dispatch)
	}()

	go l.run()
	return l, nil
}

// run is the dispatch cycle: exactly one transition in flight, ever.
func (l *Loop[S]) run() {
	state := l.opts.Initial
	var runErr error

	defer func() {
		l.shutdownSources()
		l.final = state
		l.err = runErr
		close(l.quit)
		l.sched.Stop()
		close(l.done)
	}()

	for {
		select {
		case <-l.stopReq:
			l.log.Debug("loop: external shutdown")
			return
		case ev, ok := <-l.dispatch:
			if !ok {
				l.log.Debug("loop: all sources exhausted")
				return
			}
			next, err := applyTransition(l.transitionFor(ev.Category), state, ev)
			if err != nil {
				runErr = err
				l.log.Debug("loop: transition failed", "category", string(ev.Category), "error", err)
				return
			}
			if l.opts.StopWhen != nil && l.opts.StopWhen(next) {
				state = next
				l.log.Debug("loop: stop predicate satisfied", "frames", l.frames.Load())
				return
			}
			l.sched.Frame(next)
			state = next
			n := l.frames.Add(1)
			if l.opts.MaxFrames > 0 && n >= int64(l.opts.MaxFrames) {
				l.log.Debug("loop: frame ceiling reached", "frames", n)
				return
			}
		}
	}
}

// transitionFor resolves the transition registered for a category. Nil
// means identity.
func (l *Loop[S]) transitionFor(cat source.Category) Transition[S] {
	switch cat {
	case source.CategoryTick:
		if l.opts.OnTick != nil {
			return l.opts.OnTick
		}
	case source.CategoryKey:
		if l.opts.OnKey != nil {
			return l.opts.OnKey
		}
	case source.CategoryMouse:
		if l.opts.OnMouse != nil {
			return l.opts.OnMouse
		}
	}
	return l.opts.OnEvent[cat]
}

// applyTransition runs fn and converts a panic into a loop error, so a
// faulty transition fails fast instead of crashing producer goroutines.
func applyTransition[S any](fn Transition[S], state S, ev source.Event) (next S, err error) {
	if fn == nil {
		return state, nil
	}
	defer func() {
		if r := recover(); r != nil {
			next = state
			err = fmt.Errorf("loop: %s transition panicked: %v", ev.Category, r)
		}
	}()
	next, err = fn(state, ev)
	if err != nil {
		err = fmt.Errorf("loop: %s transition: %w", ev.Category, err)
	}
	return next, err
}

// shutdownSources tears down every registered source exactly once,
// regardless of which termination path fired first.
func (l *Loop[S]) shutdownSources() {
	l.downOnce.Do(func() {
		for _, s := range l.sources {
			s.Shutdown()
		}
	})
}

// Shutdown requests termination from outside the loop. It returns without
// waiting; combine with Wait to block until teardown completes. Safe to
// call any number of times and safe to race the loop's own stop
// conditions.
func (l *Loop[S]) Shutdown() {
	l.stopOnce.Do(func() { close(l.stopReq) })
}

// Done closes when the loop has terminated and every source is shut down.
func (l *Loop[S]) Done() <-chan struct{} { return l.done }

// Wait blocks until the loop terminates and returns its error, if any.
func (l *Loop[S]) Wait() error {
	<-l.done
	return l.err
}

// Err returns the loop's terminal error. It is nil while the loop is still
// running and nil after a clean stop.
func (l *Loop[S]) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Final returns the world state at termination. Valid only after Done.
func (l *Loop[S]) Final() S {
	<-l.done
	return l.final
}

// Frames reports how many frames the loop has rendered so far.
func (l *Loop[S]) Frames() int { return int(l.frames.Load()) }
