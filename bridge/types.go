package bridge

import "context"

// BlockingFunc is thread-driven work: code that blocks, holds thread-local
// state, or otherwise expects to run on a single, stable OS thread. It is
// the shape call_blocking_from_event dispatches and ToAsync wraps.
type BlockingFunc func(ctx context.Context, args ...any) (any, error)

// CoroFunc is event-driven work: code written to run inside a single
// cooperative dispatch loop. It is the shape call_event_from_blocking runs
// and ToSync wraps.
type CoroFunc func(ctx context.Context, args ...any) (any, error)

// coroutineFunction is implemented by adapters produced by ToAsync, letting
// a host (or ToAsync's own kind check) recognize a value as already being
// a coroutine function without a type switch on the concrete adapter type.
type coroutineFunction interface {
	IsCoroutineFunction() bool
}
