package oneshot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "oneshot"

var (
	defaultLiveSet *LiveSet
	defaultOnce    sync.Once

	// connectorIDs is shared by every LiveSet so IDs are unique process-wide.
	connectorIDs atomic.Uint64
)

// member describes an armed connector.
type member struct {
	id     uint64
	name   string
	signal string
}

// LiveSet holds every armed connector until it fires or is closed.
// A connector is a member exactly while it is armed.
type LiveSet struct {
	members     map[uint64]member
	observers   []*Observer
	fired       uint64
	disarmed    uint64
	doubleFires uint64
	logger      zerolog.Logger
	tracer      trace.Tracer
	mu          sync.Mutex
}

// NewLiveSet creates an isolated LiveSet.
// Most callers use the process-wide set and never need one.
func NewLiveSet(opts ...Option) *LiveSet {
	ls := &LiveSet{
		members: make(map[uint64]member),
		logger:  zerolog.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls
}

// DefaultLiveSet returns the process-wide LiveSet, creating it if necessary.
func DefaultLiveSet() *LiveSet {
	defaultOnce.Do(func() {
		defaultOptMu.Lock()
		opts := defaultOptions
		defaultOptMu.Unlock()
		defaultLiveSet = NewLiveSet(opts...)
	})
	return defaultLiveSet
}

// Len returns the number of armed connectors.
func (ls *LiveSet) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.members)
}

// Contains reports whether the connector with the given ID is armed in this set.
func (ls *LiveSet) Contains(id uint64) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	_, ok := ls.members[id]
	return ok
}

// Stats returns a snapshot of the set's counters and membership.
func (ls *LiveSet) Stats() LiveSetStats {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	stats := LiveSetStats{
		Armed:       len(ls.members),
		Fired:       ls.fired,
		Disarmed:    ls.disarmed,
		DoubleFires: ls.doubleFires,
		PerSignal:   make(map[string]int),
	}
	for _, m := range ls.members {
		stats.PerSignal[m.signal]++
	}
	return stats
}

// insert adds m without announcing it. Used before the signal registration
// so a firing that races Connect always finds the member.
func (ls *LiveSet) insert(m member) {
	ls.mu.Lock()
	ls.members[m.id] = m
	ls.mu.Unlock()
}

// discard drops m silently after a failed registration.
func (ls *LiveSet) discard(id uint64) {
	ls.mu.Lock()
	delete(ls.members, id)
	ls.mu.Unlock()
}

// armed announces a successfully registered member.
func (ls *LiveSet) armed(m member) {
	ls.logger.Debug().
		Uint64("connector_id", m.id).
		Str("connector", m.name).
		Str("signal", m.signal).
		Msg("Connector armed")
	ls.notify(Transition{Kind: TransitionArmed, ID: m.id, Name: m.name, Signal: m.signal})
}

// release removes m, recording why it left. Returns false if m was not a member.
func (ls *LiveSet) release(m member, kind TransitionKind, cause error) bool {
	ls.mu.Lock()
	if _, ok := ls.members[m.id]; !ok {
		ls.mu.Unlock()
		return false
	}
	delete(ls.members, m.id)
	switch kind {
	case TransitionFired:
		ls.fired++
	case TransitionDisarmed:
		ls.disarmed++
	case TransitionDoubleFire:
		ls.doubleFires++
	}
	ls.mu.Unlock()

	ls.logTransition(m, kind, cause)
	ls.notify(Transition{Kind: kind, ID: m.id, Name: m.name, Signal: m.signal, Err: cause})
	return true
}

// doubleFire records a dispatch to a connector that already left the set.
func (ls *LiveSet) doubleFire(m member, err error) {
	ls.mu.Lock()
	ls.doubleFires++
	ls.mu.Unlock()

	ls.logTransition(m, TransitionDoubleFire, err)
	ls.notify(Transition{Kind: TransitionDoubleFire, ID: m.id, Name: m.name, Signal: m.signal, Err: err})
}

func (ls *LiveSet) logTransition(m member, kind TransitionKind, cause error) {
	ev := ls.logger.Debug()
	if kind == TransitionDoubleFire || cause != nil {
		ev = ls.logger.Error().Err(cause)
	}
	ev.Uint64("connector_id", m.id).
		Str("connector", m.name).
		Str("signal", m.signal).
		Str("transition", string(kind)).
		Msg("Connector released")
}

// notify delivers t to every active observer outside the set's lock.
func (ls *LiveSet) notify(t Transition) {
	t.Time = time.Now()

	ls.mu.Lock()
	observers := make([]*Observer, len(ls.observers))
	copy(observers, ls.observers)
	ls.mu.Unlock()

	for _, o := range observers {
		o.deliver(t)
	}
}
