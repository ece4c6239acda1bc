// Package workerpool implements the bridge's non-sensitive executor: a
// bounded-concurrency pool of goroutines used for call_blocking_from_event
// dispatches made with sensitive=false.
//
// A golang.org/x/sync/semaphore guards how many jobs run at once, and each
// accepted job gets its own goroutine rather than being pulled off a queue
// by a fixed set of workers. The pool is resizable at runtime, since a host
// needs to grow or shrink its default executor without tearing it down, and
// reports results through a Future instead of collecting them into an
// ordered slice, since callers here want one result per submission, not a
// batch.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Job is work submitted to a Pool. It must not itself block indefinitely on
// the pool it was submitted to.
type Job func(ctx context.Context) (any, error)

// Future is a one-shot, single-producer/single-consumer result cell:
// settled exactly once from the worker goroutine, observed any number of
// times from the submitter.
type Future struct {
	done   chan struct{}
	result any
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(result any, err error) {
	f.result, f.err = result, err
	close(f.done)
}

// Wait blocks until the job settles or ctx is done, whichever comes first.
// A context cancellation here does not stop the job itself (it may already
// be running); it only stops the caller from waiting on it.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel that is closed once the job has settled, for
// callers that want to select on it directly alongside other events.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Pool is a bounded-concurrency, unordered executor. The zero value is not
// usable; construct one with [New].
type Pool struct {
	mu    sync.RWMutex
	sem   *semaphore.Weighted
	limit int64
}

// New creates a pool that runs up to concurrency jobs at once. A
// non-positive concurrency defaults to runtime.NumCPU().
func New(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
		if concurrency < 1 {
			concurrency = 1
		}
	}
	return &Pool{
		sem:   semaphore.NewWeighted(int64(concurrency)),
		limit: int64(concurrency),
	}
}

// Resize changes the pool's concurrency limit. Jobs submitted before the
// call, whether running or still waiting for a slot, keep using the
// previous limit; the new limit governs jobs submitted afterwards. This is
// how a host grows/shrinks the default executor without tearing it down.
func (p *Pool) Resize(concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}
	p.mu.Lock()
	p.sem = semaphore.NewWeighted(int64(concurrency))
	p.limit = int64(concurrency)
	p.mu.Unlock()
}

// Limit returns the pool's current concurrency limit.
func (p *Pool) Limit() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.limit
}

func (p *Pool) currentSem() *semaphore.Weighted {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sem
}

// Submit enqueues job for execution. It returns immediately with a Future;
// the job itself may run on any pool goroutine, and completion order is not
// guaranteed to match submission order.
//
// If ctx is cancelled before a slot is acquired, the Future settles with
// ctx.Err() and the job never runs.
func (p *Pool) Submit(ctx context.Context, job Job) *Future {
	f := newFuture()
	sem := p.currentSem()
	go func() {
		if err := sem.Acquire(ctx, 1); err != nil {
			f.settle(nil, err)
			return
		}
		defer sem.Release(1)

		result, err := runRecovered(ctx, job)
		f.settle(result, err)
	}()
	return f
}

// runRecovered executes job, converting a panic into an error so a single
// bad job can never take down the calling goroutine silently.
func runRecovered(ctx context.Context, job Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: job panicked: %v", r)
		}
	}()
	return job(ctx)
}
