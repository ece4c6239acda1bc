// Package stickyworker implements the bridge's sensitive worker: a single,
// long-lived goroutine pinned to one OS thread via runtime.LockOSThread,
// draining a FIFO queue of blocking jobs.
//
// Pinning the worker goroutine to an OS thread is what makes "the same
// thread" a meaningful guarantee in Go: ordinary goroutines migrate freely
// between OS threads between blocking points, which would silently break
// any callee that depends on thread-local state (the exact failure mode
// the sensitive worker exists to prevent). LockOSThread removes that
// freedom for this one goroutine for as long as it lives.
package stickyworker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/edtdbridge/internal/gid"
)

// Job is a unit of work submitted to a Worker.
type Job func(ctx context.Context) (any, error)

// Result is the outcome of a Job, delivered through the channel returned by
// Submit.
type Result struct {
	Value any
	Err   error
}

// job pairs a Job with its result channel and the ctx it was submitted
// with, so cancellation can be observed even though jobs run FIFO.
type job struct {
	ctx context.Context
	fn  Job
	out chan<- Result
}

// Worker is a single-thread FIFO executor. The zero value is not usable;
// construct one with [Start].
type Worker struct {
	jobs     chan job
	ready    chan struct{}
	done     chan struct{}
	threadID atomic.Uint64
	closed   atomic.Bool
	// shutdownMu serializes Submit against Shutdown: Submit holds the read
	// side while it sends, Shutdown takes the write side before closing
	// jobs, so a send can never race a close of the same channel.
	shutdownMu sync.RWMutex
	queued     atomic.Int64
}

// Start launches the worker goroutine and blocks until it has locked its OS
// thread and recorded its own goroutine ID, so [Worker.ThreadID] is valid
// the moment Start returns.
func Start() *Worker {
	w := &Worker{
		jobs:  make(chan job, 256),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
	go w.run()
	<-w.ready
	return w
}

func (w *Worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	w.threadID.Store(gid.Current())
	close(w.ready)

	for j := range w.jobs {
		w.queued.Add(-1)
		result := execute(j)
		select {
		case j.out <- result:
		default:
			// Submit always gives out a buffered channel of size 1, so this
			// never actually blocks; the default case only guards against a
			// caller that built its own job by hand with a zero-capacity
			// channel and stopped reading.
		}
	}
}

func execute(j job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: fmt.Errorf("stickyworker: job panicked: %v", r)}
		}
	}()
	v, err := j.fn(j.ctx)
	return Result{Value: v, Err: err}
}

// ErrClosed is returned by Submit once Shutdown has been called.
var ErrClosed = fmt.Errorf("stickyworker: worker is shut down")

// Submit enqueues fn and returns a channel that receives exactly one
// Result once fn has run. Jobs run strictly in the order Submit was called,
// one at a time, on the worker's dedicated thread.
func (w *Worker) Submit(ctx context.Context, fn Job) (<-chan Result, error) {
	w.shutdownMu.RLock()
	defer w.shutdownMu.RUnlock()
	if w.closed.Load() {
		return nil, ErrClosed
	}
	out := make(chan Result, 1)
	w.queued.Add(1)
	w.jobs <- job{ctx: ctx, fn: fn, out: out}
	return out, nil
}

// ThreadID returns the goroutine ID of the worker's dedicated goroutine.
// Every sensitive job dispatched to this worker, from any call depth, runs
// on this same ID for as long as the worker lives.
func (w *Worker) ThreadID() gid.ID {
	return w.threadID.Load()
}

// QueueDepth returns the number of jobs submitted but not yet started.
func (w *Worker) QueueDepth() int64 {
	return w.queued.Load()
}

// Shutdown closes the job queue and waits for already-queued jobs to
// finish, or for ctx to be done, whichever is first. After Shutdown
// returns, Submit always fails with ErrClosed.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownMu.Lock()
	if !w.closed.Swap(true) {
		close(w.jobs)
	}
	w.shutdownMu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
