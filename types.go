// Package oneshot connects a handler to a signal so that it fires at most once.
//
// A Connector registers a dispatch slot with a Signal and records itself in a
// live-set. When the signal fires, the connector disconnects its slot, leaves
// the live-set and only then invokes the handler, returning its result. A
// panicking handler therefore never leaves a registration or live-set entry
// behind.
//
// Quick example:
//
//	clicked := oneshot.NewEmitter[*oneshot.Args]("button.clicked")
//
//	oneshot.Connect(clicked, func(ctx context.Context, a *oneshot.Args) string {
//	    return "done"
//	})
//
//	clicked.Emit(context.Background(), oneshot.NewArgs(1, 2)) // handler runs
//	clicked.Emit(context.Background(), oneshot.NewArgs(3, 4)) // nothing connected
package oneshot

import "context"

// Signal is an event source that accepts and releases slots.
// Slots are compared by pointer identity: the slot passed to Disconnect must be
// the one passed to Connect.
type Signal[A any] interface {
	// Connect registers slot to be called whenever the signal fires.
	Connect(slot *Slot[A]) error

	// Disconnect removes a previously connected slot.
	Disconnect(slot *Slot[A]) error
}

// SlotFunc is the callable held by a Slot.
type SlotFunc[A any] func(context.Context, A) (any, error)

// Handler is a caller-supplied callback producing a result of type R.
type Handler[A, R any] func(context.Context, A) R

// State describes where a Connector is in its lifecycle.
type State int32

const (
	// StateArmed means the connector is registered and waiting for its signal.
	StateArmed State = iota
	// StateFired means the signal fired and the handler was invoked.
	StateFired
	// StateDisarmed means the connector was closed before its signal fired.
	StateDisarmed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateFired:
		return "fired"
	case StateDisarmed:
		return "disarmed"
	default:
		return "unknown"
	}
}

// named is implemented by signals that can describe themselves.
type named interface {
	Name() string
}

// signalName returns sig's name if it has one.
func signalName(sig any) string {
	if n, ok := sig.(named); ok {
		return n.Name()
	}
	return ""
}

// EmitterStats provides runtime metrics for an Emitter.
type EmitterStats struct {
	// Name is the emitter's name.
	Name string

	// Slots is the number of connected slots.
	Slots int

	// QueueDepth is the number of payloads waiting in the queue.
	QueueDepth int

	// Queued reports whether the emitter dispatches through a worker goroutine.
	Queued bool
}

// LiveSetStats provides runtime metrics for a LiveSet.
type LiveSetStats struct {
	// Armed is the number of connectors currently waiting to fire.
	Armed int

	// Fired counts connectors whose handler was invoked.
	Fired uint64

	// Disarmed counts connectors closed before firing.
	Disarmed uint64

	// DoubleFires counts dispatches rejected because the connector had already fired.
	DoubleFires uint64

	// PerSignal maps each signal name to its number of armed connectors.
	// Unnamed signals are counted under "".
	PerSignal map[string]int
}
