package oneshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Connector delivers a single firing of a Signal to a Handler.
// It is armed on creation and leaves its LiveSet the moment it fires or is closed.
type Connector[A, R any] struct {
	m        member
	signal   Signal[A]
	handler  Handler[A, R]
	slot     *Slot[A]
	set      *LiveSet
	state    atomic.Int32
	done     chan struct{}
	doneOnce sync.Once
}

// Connect arms handler to run the next time sig fires, and never again.
//
// The returned Connector need not be retained; it stays reachable through the
// signal and its LiveSet until it fires. Registration failures are returned as
// *RegistrationError wrapping the signal's error.
func Connect[A, R any](sig Signal[A], handler Handler[A, R], opts ...ConnectOption) (*Connector[A, R], error) {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.liveSet == nil {
		cfg.liveSet = DefaultLiveSet()
	}

	if sig == nil {
		return nil, &RegistrationError{Err: ErrNilSignal}
	}
	name := signalName(sig)
	if handler == nil {
		return nil, &RegistrationError{Signal: name, Err: ErrNilHandler}
	}

	c := &Connector[A, R]{
		m: member{
			id:     connectorIDs.Add(1),
			name:   cfg.name,
			signal: name,
		},
		signal:  sig,
		handler: handler,
		set:     cfg.liveSet,
		done:    make(chan struct{}),
	}
	c.slot = NewSlot(func(ctx context.Context, a A) (any, error) {
		result, err := c.Dispatch(ctx, a)
		if errors.Is(err, ErrDisarmed) {
			// Close raced an emission that had already picked up the slot
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	})

	c.set.insert(c.m)
	if err := sig.Connect(c.slot); err != nil {
		c.set.discard(c.m.id)
		return nil, &RegistrationError{Signal: name, Err: err}
	}
	c.set.armed(c.m)

	return c, nil
}

// Dispatch fires the connector. Signals call it through the connector's slot.
//
// The slot is disconnected and the connector released from its LiveSet before
// the handler runs, so a panicking handler leaves nothing behind. The handler's
// result is returned unchanged. A closed connector returns ErrDisarmed; one that
// already fired returns a *DoubleFireError. Neither invokes the handler.
func (c *Connector[A, R]) Dispatch(ctx context.Context, a A) (R, error) {
	var zero R

	if !c.state.CompareAndSwap(int32(StateArmed), int32(StateFired)) {
		if c.State() == StateDisarmed {
			return zero, ErrDisarmed
		}
		err := &DoubleFireError{ID: c.m.id, Signal: c.m.signal}
		c.set.doubleFire(c.m, err)
		return zero, err
	}
	c.closeDone()

	if err := c.signal.Disconnect(c.slot); err != nil {
		c.state.Store(int32(StateDisarmed))
		if errors.Is(err, ErrNotConnected) {
			dfe := &DoubleFireError{ID: c.m.id, Signal: c.m.signal, Err: err}
			c.set.release(c.m, TransitionDoubleFire, dfe)
			return zero, dfe
		}
		c.set.release(c.m, TransitionDisarmed, err)
		return zero, fmt.Errorf("oneshot: disconnect connector %d: %w", c.m.id, err)
	}
	c.set.release(c.m, TransitionFired, nil)

	return c.invoke(ctx, a), nil
}

// invoke runs the handler inside a span. Panics are recorded and re-raised.
func (c *Connector[A, R]) invoke(ctx context.Context, a A) R {
	ctx, span := c.set.tracer.Start(ctx, "oneshot.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("oneshot.connector_id", int64(c.m.id)),
			attribute.String("oneshot.connector", c.m.name),
			attribute.String("oneshot.signal", c.m.signal),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprint(r))
			panic(r)
		}
	}()

	return c.handler(ctx, a)
}

// Close disarms the connector if it has not fired yet. Safe to call multiple
// times and after firing. Only an unexpected signal error is returned.
func (c *Connector[A, R]) Close() error {
	if !c.state.CompareAndSwap(int32(StateArmed), int32(StateDisarmed)) {
		return nil
	}
	c.closeDone()

	err := c.signal.Disconnect(c.slot)
	if errors.Is(err, ErrNotConnected) {
		err = nil
	}
	c.set.release(c.m, TransitionDisarmed, err)
	return err
}

// Done returns a channel closed once the connector has fired or been closed.
func (c *Connector[A, R]) Done() <-chan struct{} {
	return c.done
}

// State returns the connector's lifecycle state.
func (c *Connector[A, R]) State() State {
	return State(c.state.Load())
}

// ID returns the connector's process-unique identifier.
func (c *Connector[A, R]) ID() uint64 {
	return c.m.id
}

// Name returns the label given with WithName.
func (c *Connector[A, R]) Name() string {
	return c.m.name
}

func (c *Connector[A, R]) closeDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
