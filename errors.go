package oneshot

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSignal is returned when Connect is given a nil signal.
	ErrNilSignal = errors.New("oneshot: nil signal")

	// ErrNilHandler is returned when Connect is given a nil handler.
	ErrNilHandler = errors.New("oneshot: nil handler")

	// ErrNilSlot is returned by Emitter.Connect for a nil slot.
	ErrNilSlot = errors.New("oneshot: nil slot")

	// ErrAlreadyConnected is returned when a slot is connected twice to the same emitter.
	ErrAlreadyConnected = errors.New("oneshot: slot already connected")

	// ErrNotConnected is returned when disconnecting a slot that is not connected.
	ErrNotConnected = errors.New("oneshot: slot not connected")

	// ErrClosed is returned by an Emitter after Shutdown.
	ErrClosed = errors.New("oneshot: emitter closed")

	// ErrDisarmed is returned when dispatching a connector that was closed
	// before its signal fired.
	ErrDisarmed = errors.New("oneshot: connector disarmed")

	// ErrDoubleFire matches every DoubleFireError.
	ErrDoubleFire = errors.New("oneshot: connector already fired")
)

// RegistrationError reports that a connector could not be registered with its signal.
// Err is the signal's error, unchanged.
type RegistrationError struct {
	Signal string
	Err    error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("oneshot: register with %q: %v", e.Signal, e.Err)
	}
	return fmt.Sprintf("oneshot: register: %v", e.Err)
}

// Unwrap returns the underlying signal error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// DoubleFireError reports a dispatch to a connector that is no longer armed.
// It indicates a signal delivering to a slot after it was disconnected, and is
// not meant to be recovered from.
type DoubleFireError struct {
	ID     uint64
	Signal string
	Err    error
}

// Error implements the error interface.
func (e *DoubleFireError) Error() string {
	msg := fmt.Sprintf("oneshot: connector %d on %q already fired", e.ID, e.Signal)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *DoubleFireError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDoubleFire.
func (e *DoubleFireError) Is(target error) bool {
	return target == ErrDoubleFire
}
