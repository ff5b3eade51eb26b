package oneshot

import (
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var (
	defaultOptions []Option
	defaultOptMu   sync.Mutex
)

// Option configures a LiveSet.
type Option func(*LiveSet)

// Configure sets options for the process-wide LiveSet.
// Must be called before the first Connect that uses the default set.
// Subsequent calls have no effect once the default set is created.
func Configure(opts ...Option) {
	defaultOptMu.Lock()
	defaultOptions = opts
	defaultOptMu.Unlock()
}

// WithLogger sets the logger used for connector lifecycle events.
// Default is a disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(ls *LiveSet) {
		ls.logger = logger
	}
}

// WithTracer sets the tracer used to span handler invocations.
// Default is the global provider's "oneshot" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(ls *LiveSet) {
		if tracer != nil {
			ls.tracer = tracer
		}
	}
}

// PanicHandler is called when a slot panics during emission.
// Receives the emitter name and the recovered panic value.
type PanicHandler func(name string, recovered any)

// ErrorHandler is called with slot errors from queued emissions,
// which have no caller to return them to.
type ErrorHandler func(name string, err error)

type emitterConfig struct {
	queueSize    int
	panicHandler PanicHandler
	errorHandler ErrorHandler
}

// EmitterOption configures an Emitter.
type EmitterOption func(*emitterConfig)

// WithQueue makes Emit hand payloads to a worker goroutine through a buffer of
// the given size instead of dispatching on the caller's goroutine.
// Sizes below 1 leave the emitter synchronous.
func WithQueue(size int) EmitterOption {
	return func(c *emitterConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithPanicHandler recovers slot panics and reports them to handler.
// Without it, a synchronous Emit lets slot panics reach its caller, and the
// queued worker recovers them silently.
func WithPanicHandler(handler PanicHandler) EmitterOption {
	return func(c *emitterConfig) {
		c.panicHandler = handler
	}
}

// WithErrorHandler receives slot errors from queued emissions.
func WithErrorHandler(handler ErrorHandler) EmitterOption {
	return func(c *emitterConfig) {
		c.errorHandler = handler
	}
}

type connectConfig struct {
	liveSet *LiveSet
	name    string
}

// ConnectOption configures a single Connect call.
type ConnectOption func(*connectConfig)

// WithLiveSet tracks the connector in ls instead of the process-wide set.
func WithLiveSet(ls *LiveSet) ConnectOption {
	return func(c *connectConfig) {
		if ls != nil {
			c.liveSet = ls
		}
	}
}

// WithName labels the connector in logs, spans and transitions.
func WithName(name string) ConnectOption {
	return func(c *connectConfig) {
		c.name = name
	}
}
