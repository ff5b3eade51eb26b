package oneshot

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func constSlot(v any) *Slot[int] {
	return NewSlot(func(_ context.Context, _ int) (any, error) {
		return v, nil
	})
}

func TestNewEmitter(t *testing.T) {
	e := NewEmitter[int]("test.new")
	if e == nil {
		t.Fatal("NewEmitter returned nil")
	}
	if e.Name() != "test.new" {
		t.Errorf("expected name %q, got %q", "test.new", e.Name())
	}
	if e.shutdown == nil {
		t.Error("shutdown channel not initialized")
	}
	if e.jobs != nil {
		t.Error("synchronous emitter should not have a queue")
	}
}

func TestEmitterConnectErrors(t *testing.T) {
	e := NewEmitter[int]("test.connect")
	other := NewEmitter[int]("test.connect.other")
	slot := constSlot(1)

	if err := e.Connect(nil); !errors.Is(err, ErrNilSlot) {
		t.Errorf("expected ErrNilSlot, got %v", err)
	}

	if err := e.Connect(slot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slot.Attached() {
		t.Error("expected slot to be attached")
	}

	if err := e.Connect(slot); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("expected ErrAlreadyConnected, got %v", err)
	}
	if err := other.Connect(slot); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("expected ErrAlreadyConnected from a second emitter, got %v", err)
	}

	if e.Len() != 1 {
		t.Errorf("expected 1 slot, got %d", e.Len())
	}
}

func TestEmitterDisconnect(t *testing.T) {
	e := NewEmitter[int]("test.disconnect")
	slot := constSlot(1)

	if err := e.Disconnect(slot); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}

	if err := e.Connect(slot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Disconnect(slot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.Attached() {
		t.Error("expected slot to be detached")
	}
	if err := e.Disconnect(slot); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected on second disconnect, got %v", err)
	}

	// A detached slot may be connected again
	if err := e.Connect(slot); err != nil {
		t.Errorf("unexpected error reconnecting: %v", err)
	}
}

func TestEmitResultsInConnectionOrder(t *testing.T) {
	e := NewEmitter[int]("test.order")

	for _, v := range []string{"a", "b", "c"} {
		if err := e.Connect(constSlot(v)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	results, err := e.Emit(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(results, []any{"a", "b", "c"}) {
		t.Errorf("expected [a b c], got %v", results)
	}
}

func TestEmitJoinsSlotErrors(t *testing.T) {
	e := NewEmitter[int]("test.errors")
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	e.Connect(NewSlot(func(_ context.Context, _ int) (any, error) { return nil, errA })) //nolint:errcheck // fresh slot
	e.Connect(constSlot("ok"))                                                          //nolint:errcheck // fresh slot
	e.Connect(NewSlot(func(_ context.Context, _ int) (any, error) { return nil, errB })) //nolint:errcheck // fresh slot

	results, err := e.Emit(context.Background(), 0)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both slot errors, got %v", err)
	}
	if len(results) != 3 || results[1] != "ok" {
		t.Errorf("expected every slot to run, got %v", results)
	}
}

func TestEmitCanceledContext(t *testing.T) {
	e := NewEmitter[int]("test.canceled")

	called := false
	e.Connect(NewSlot(func(_ context.Context, _ int) (any, error) { //nolint:errcheck // fresh slot
		called = true
		return nil, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Emit(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("slot should not run for a canceled context")
	}
}

func TestEmitPassesPayloadAndContext(t *testing.T) {
	type ctxKey struct{}

	e := NewEmitter[int]("test.payload")
	var gotValue any
	var gotPayload int

	e.Connect(NewSlot(func(ctx context.Context, n int) (any, error) { //nolint:errcheck // fresh slot
		gotValue = ctx.Value(ctxKey{})
		gotPayload = n
		return nil, nil
	}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")
	if _, err := e.Emit(ctx, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotValue != "request-1" {
		t.Errorf("expected context value %q, got %v", "request-1", gotValue)
	}
	if gotPayload != 42 {
		t.Errorf("expected payload 42, got %d", gotPayload)
	}
}

// TestEmitSkipsSlotsDisconnectedMidEmission verifies a slot removed by an
// earlier slot in the same emission does not run.
func TestEmitSkipsSlotsDisconnectedMidEmission(t *testing.T) {
	e := NewEmitter[int]("test.midemit")

	secondCalled := false
	second := NewSlot(func(_ context.Context, _ int) (any, error) {
		secondCalled = true
		return nil, nil
	})
	first := NewSlot(func(_ context.Context, _ int) (any, error) {
		return nil, e.Disconnect(second)
	})

	e.Connect(first)  //nolint:errcheck // fresh slot
	e.Connect(second) //nolint:errcheck // fresh slot

	if _, err := e.Emit(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondCalled {
		t.Error("expected disconnected slot to be skipped")
	}
}

func TestEmitPanicPropagates(t *testing.T) {
	e := NewEmitter[int]("test.panic.sync")
	e.Connect(NewSlot(func(_ context.Context, _ int) (any, error) { //nolint:errcheck // fresh slot
		panic("slot panic")
	}))

	defer func() {
		if r := recover(); r != "slot panic" {
			t.Errorf("expected slot panic to propagate, got %v", r)
		}
	}()
	e.Emit(context.Background(), 0) //nolint:errcheck // panics
	t.Error("expected Emit to panic")
}

func TestWithPanicHandler(t *testing.T) {
	var panicName string
	var panicValue any

	e := NewEmitter[int]("test.panic.handled", WithPanicHandler(func(name string, recovered any) {
		panicName = name
		panicValue = recovered
	}))

	e.Connect(NewSlot(func(_ context.Context, _ int) (any, error) { //nolint:errcheck // fresh slot
		panic("slot panic")
	}))
	e.Connect(constSlot("after")) //nolint:errcheck // fresh slot

	results, err := e.Emit(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if panicName != "test.panic.handled" {
		t.Errorf("expected name %q, got %q", "test.panic.handled", panicName)
	}
	if panicValue != "slot panic" {
		t.Errorf("expected panic value %q, got %v", "slot panic", panicValue)
	}
	if len(results) != 2 || results[1] != "after" {
		t.Errorf("expected later slots to run, got %v", results)
	}
}

func TestEmitterStats(t *testing.T) {
	e := NewEmitter[int]("test.stats")
	e.Connect(constSlot(1)) //nolint:errcheck // fresh slot
	e.Connect(constSlot(2)) //nolint:errcheck // fresh slot

	stats := e.Stats()
	if stats.Name != "test.stats" {
		t.Errorf("expected name %q, got %q", "test.stats", stats.Name)
	}
	if stats.Slots != 2 {
		t.Errorf("expected 2 slots, got %d", stats.Slots)
	}
	if stats.Queued {
		t.Error("expected synchronous emitter")
	}
	if stats.QueueDepth != 0 {
		t.Errorf("expected queue depth 0, got %d", stats.QueueDepth)
	}
}

func TestEmitterClosed(t *testing.T) {
	e := NewEmitter[int]("test.closed")
	e.Shutdown()
	e.Shutdown() // idempotent

	if _, err := e.Emit(context.Background(), 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Emit, got %v", err)
	}
	if err := e.Connect(constSlot(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Connect, got %v", err)
	}
}
