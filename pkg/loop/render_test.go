package loop

import (
	"sync"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/bigbang/pkg/source"
)

func TestImmediateDrawsEveryFrameSynchronously(t *testing.T) {
	rec := &recorder[int]{}
	s := NewImmediate(rec.draw)

	s.Frame(1)
	s.Frame(2)
	s.Frame(3)
	s.Stop()

	got := rec.snapshot()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("draws = %v, want [1 2 3]", got)
	}
}

// With the refresh tick parked, Stop must still flush the most recent
// state: the last state handed to Frame is guaranteed to render.
func TestVSyncFlushesLatestStateOnStop(t *testing.T) {
	rec := &recorder[int]{}
	v := NewVSync(rec.draw, time.Hour)

	v.Frame(42)
	v.Stop()

	got := rec.snapshot()
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("draws = %v, want [42]", got)
	}
}

// Intermediate states produced faster than the refresh rate are superseded;
// only the newest one renders.
func TestVSyncSupersedesIntermediateStates(t *testing.T) {
	rec := &recorder[int]{}
	v := NewVSync(rec.draw, time.Hour)

	v.Frame(1)
	v.Frame(2)
	v.Frame(3)
	v.Stop()

	got := rec.snapshot()
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("draws = %v, want only the latest state [3]", got)
	}
}

func TestVSyncStopIsIdempotent(t *testing.T) {
	v := NewVSync(func(int) {}, time.Millisecond)
	v.Frame(1)
	v.Stop()
	v.Stop()
}

// A draw that blocks must not block Frame: the dispatch cycle keeps
// accepting transitions while rendering lags.
func TestVSyncSlowDrawDoesNotBlockFrame(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	v := NewVSync(func(int) {
		once.Do(func() {
			close(started)
			<-release
		})
	}, time.Millisecond)

	v.Frame(1)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("draw never started")
	}

	// The renderer is stuck inside draw; Frame must return immediately.
	begin := time.Now()
	for i := 2; i <= 100; i++ {
		v.Frame(i)
	}
	if elapsed := time.Since(begin); elapsed > 500*time.Millisecond {
		t.Errorf("100 Frame calls took %v with a blocked renderer", elapsed)
	}

	close(release)
	v.Stop()
}

// End to end: a slow renderer lags behind the dispatch cycle instead of
// throttling it.
func TestRenderDecouplingFromTransitions(t *testing.T) {
	var draws counter
	slowDraw := func(int) {
		draws.add(1)
		time.Sleep(100 * time.Millisecond)
	}

	l, err := Run(Options[int]{
		OnTick:          func(s int, _ source.Event) (int, error) { return s + 1, nil },
		Draw:            slowDraw,
		TickInterval:    2 * time.Millisecond,
		RefreshInterval: 2 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	frames := l.Frames()
	l.Shutdown()
	waitDone(t, l)

	if drawn := draws.load(); int(drawn) >= frames {
		t.Errorf("draws = %d, frames = %d; expected transitions to outpace a slow renderer", drawn, frames)
	}
	if frames < 10 {
		t.Errorf("frames = %d; slow rendering appears to have throttled transitions", frames)
	}
}

// counter is a small mutex-guarded tally shared between test goroutines.
type counter struct {
	mu sync.Mutex
	n  int
}

func (a *counter) add(d int) {
	a.mu.Lock()
	a.n += d
	a.mu.Unlock()
}

func (a *counter) load() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}
