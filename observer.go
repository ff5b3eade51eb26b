package oneshot

import (
	"sync"
	"time"
)

// TransitionKind names a change in a connector's membership of a LiveSet.
type TransitionKind string

const (
	TransitionArmed      TransitionKind = "armed"
	TransitionFired      TransitionKind = "fired"
	TransitionDisarmed   TransitionKind = "disarmed"
	TransitionDoubleFire TransitionKind = "double_fire"
)

// Transition is delivered to observers whenever a connector is armed, fires,
// is closed, or is dispatched again after firing.
type Transition struct {
	Kind   TransitionKind
	ID     uint64
	Name   string
	Signal string

	// Err is set for double fires and for failed disconnects.
	Err error

	Time time.Time
}

// Observer is a subscription to a LiveSet's transitions.
// Call Close() to unsubscribe.
type Observer struct {
	callback func(Transition)
	set      *LiveSet
	active   bool
	mu       sync.Mutex
}

// Observe registers fn to receive every transition of the set.
// fn runs synchronously on the goroutine that caused the transition; for
// Fired this is before the handler is invoked.
func (ls *LiveSet) Observe(fn func(Transition)) *Observer {
	o := &Observer{
		callback: fn,
		set:      ls,
		active:   true,
	}

	ls.mu.Lock()
	ls.observers = append(ls.observers, o)
	ls.mu.Unlock()

	return o
}

// Close removes the observer from its set.
func (o *Observer) Close() {
	// Lock observer first to mark inactive
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return // Already closed
	}
	o.active = false
	o.mu.Unlock()

	ls := o.set
	ls.mu.Lock()
	for i, obs := range ls.observers {
		if obs == o {
			// Swap with last element and truncate
			lastIdx := len(ls.observers) - 1
			ls.observers[i] = ls.observers[lastIdx]
			ls.observers = ls.observers[:lastIdx]
			break
		}
	}
	ls.mu.Unlock()
}

// deliver calls the observer's callback unless it has been closed.
func (o *Observer) deliver(t Transition) {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()

	if active {
		o.callback(t)
	}
}
