package oneshot

import (
	"context"
	"sync/atomic"
)

// Slot is a connectable callback.
// Its pointer is its identity; copy the pointer, never the value.
type Slot[A any] struct {
	fn       SlotFunc[A]
	attached atomic.Bool
}

// NewSlot wraps fn in a Slot.
func NewSlot[A any](fn SlotFunc[A]) *Slot[A] {
	return &Slot[A]{fn: fn}
}

// Call invokes the slot's function.
func (s *Slot[A]) Call(ctx context.Context, a A) (any, error) {
	return s.fn(ctx, a)
}

// Attached reports whether the slot is currently connected to an Emitter.
func (s *Slot[A]) Attached() bool {
	return s.attached.Load()
}
