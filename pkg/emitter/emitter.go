// Package emitter provides an instance-scoped named-event target: the
// in-process analogue of a DOM element that listener sources subscribe to.
// Each Emitter owns its own handler table, so multiple engine instances can
// run side by side without sharing registration state.
package emitter

import "sync"

// Handler receives the payload of a single emitted event. Handlers run
// synchronously on the emitting goroutine and must not block; listener
// sources satisfy this by doing a non-blocking channel placement.
type Handler func(payload any)

type entry struct {
	id int
	fn Handler
}

// Emitter dispatches named events to registered handlers. The zero value is
// not usable; construct with New.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	nextID   int
	closed   bool
}

// New returns an empty Emitter.
func New() *Emitter {
	return &Emitter{handlers: make(map[string][]entry)}
}

// On registers fn for the named event and returns a detach function.
// Detaching is idempotent and disturbs no other handler registered for the
// same name. Registering on a closed emitter returns a no-op detach.
func (e *Emitter) On(name string, fn Handler) (detach func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return func() {}
	}
	e.nextID++
	id := e.nextID
	e.handlers[name] = append(e.handlers[name], entry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { e.off(name, id) })
	}
}

func (e *Emitter) off(name string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := e.handlers[name]
	for i, en := range entries {
		if en.id == id {
			e.handlers[name] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(e.handlers[name]) == 0 {
		delete(e.handlers, name)
	}
}

// Emit invokes every handler registered for the named event, in
// registration order, and reports how many ran. Events with no handlers are
// silently discarded.
func (e *Emitter) Emit(name string, payload any) int {
	e.mu.RLock()
	entries := e.handlers[name]
	// Snapshot so a handler detaching itself mid-dispatch is safe.
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	e.mu.RUnlock()

	for _, en := range snapshot {
		en.fn(payload)
	}
	return len(snapshot)
}

// ListenerCount reports how many handlers are registered for the named
// event.
func (e *Emitter) ListenerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[name])
}

// Close detaches every handler and rejects future registrations. Emit on a
// closed emitter delivers to nobody. Idempotent.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.handlers = make(map[string][]entry)
}
