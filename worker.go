package oneshot

import "context"

// job is a queued emission.
type job[A any] struct {
	ctx     context.Context
	payload A
}

// enqueue hands a to the worker goroutine, starting it lazily on first use.
// Blocks while the queue is full (backpressure).
func (e *Emitter[A]) enqueue(ctx context.Context, a A) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.jobs == nil {
		e.jobs = make(chan job[A], e.cfg.queueSize)
		e.wg.Add(1)
		go e.processJobs(e.jobs)
	}
	jobs := e.jobs
	e.senders.Add(1)
	e.mu.Unlock()
	defer e.senders.Done()

	// The worker keeps running until every sender has finished, so an
	// accepted payload is always dispatched.
	select {
	case jobs <- job[A]{ctx: ctx, payload: a}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processJobs is the worker goroutine for a queued emitter.
func (e *Emitter[A]) processJobs(jobs chan job[A]) {
	defer e.wg.Done()

	for {
		select {
		case j := <-jobs:
			e.runJob(j)

		case <-e.shutdown:
			// Process remaining jobs before shutting down
			for {
				select {
				case j := <-jobs:
					e.runJob(j)
				default:
					return
				}
			}
		}
	}
}

// runJob dispatches one queued emission. Panics never escape the worker.
func (e *Emitter[A]) runJob(j job[A]) {
	if j.ctx.Err() != nil {
		return
	}
	_, err := e.dispatch(j.ctx, j.payload, true)
	if err != nil && e.cfg.errorHandler != nil {
		e.cfg.errorHandler(e.name, err)
	}
}

// Shutdown stops accepting emissions, drains queued payloads and waits for the
// worker to exit. Safe to call multiple times; subsequent calls are no-ops.
func (e *Emitter[A]) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.senders.Wait()
	e.shutdownOnce.Do(func() {
		close(e.shutdown)
	})
	e.wg.Wait()
}
