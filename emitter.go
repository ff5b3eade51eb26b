package oneshot

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Emitter is an in-process Signal. Slots run in the order they were connected.
type Emitter[A any] struct {
	name         string
	slots        []*Slot[A]
	jobs         chan job[A] // nil until the first queued Emit
	closed       bool
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	senders      sync.WaitGroup // enqueues past the closed check
	mu           sync.RWMutex
	cfg          emitterConfig
}

// NewEmitter creates an Emitter with the given name and options.
// By default Emit is synchronous and slot panics reach the caller.
func NewEmitter[A any](name string, opts ...EmitterOption) *Emitter[A] {
	e := &Emitter[A]{
		name:     name,
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&e.cfg)
	}
	return e
}

// Name returns the emitter's name, or "" for a nil emitter.
func (e *Emitter[A]) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

// Connect registers slot. A slot may be connected to one emitter at a time.
func (e *Emitter[A]) Connect(slot *Slot[A]) error {
	if e == nil {
		return ErrNilSignal
	}
	if slot == nil {
		return ErrNilSlot
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !slot.attached.CompareAndSwap(false, true) {
		return ErrAlreadyConnected
	}
	e.slots = append(e.slots, slot)
	return nil
}

// Disconnect removes slot. Safe to call from inside a slot during emission.
func (e *Emitter[A]) Disconnect(slot *Slot[A]) error {
	if e == nil {
		return ErrNotConnected
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := slices.Index(e.slots, slot)
	if i < 0 {
		return ErrNotConnected
	}
	e.slots = slices.Delete(e.slots, i, i+1)
	slot.attached.Store(false)
	return nil
}

// Len returns the number of connected slots.
func (e *Emitter[A]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.slots)
}

// Emit fires the signal with payload a.
//
// In synchronous mode every connected slot runs on the caller's goroutine; the
// slot results are returned in connection order and slot errors are joined.
// In queued mode the payload is handed to the worker and Emit returns nil
// results, blocking while the queue is full.
func (e *Emitter[A]) Emit(ctx context.Context, a A) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.cfg.queueSize > 0 {
		return nil, e.enqueue(ctx, a)
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	return e.dispatch(ctx, a, e.cfg.panicHandler != nil)
}

// dispatch invokes every attached slot with a.
func (e *Emitter[A]) dispatch(ctx context.Context, a A, recoverPanics bool) ([]any, error) {
	// Copy slot slice while holding lock so slots may disconnect during dispatch
	e.mu.RLock()
	slots := make([]*Slot[A], len(e.slots))
	copy(slots, e.slots)
	e.mu.RUnlock()

	var results []any
	var errs []error
	for _, slot := range slots {
		// Skip slots disconnected by an earlier slot in this emission
		if !slot.Attached() {
			continue
		}
		result, err := e.call(ctx, slot, a, recoverPanics)
		results = append(results, result)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// call runs a single slot, recovering a panic if asked to.
func (e *Emitter[A]) call(ctx context.Context, slot *Slot[A], a A, recoverPanics bool) (result any, err error) {
	if recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				if e.cfg.panicHandler != nil {
					e.cfg.panicHandler(e.name, r)
				}
			}
		}()
	}
	return slot.Call(ctx, a)
}

// Stats returns a snapshot of the emitter's runtime state.
func (e *Emitter[A]) Stats() EmitterStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := EmitterStats{
		Name:   e.name,
		Slots:  len(e.slots),
		Queued: e.cfg.queueSize > 0,
	}
	if e.jobs != nil {
		stats.QueueDepth = len(e.jobs)
	}
	return stats
}
