package bridge

import (
	"context"

	"github.com/joeycumines/edtdbridge/stickyworker"
	"github.com/joeycumines/edtdbridge/workerpool"
)

// blockingConfig holds the resolved options for a single
// call_blocking_from_event dispatch.
type blockingConfig struct {
	sensitive bool
	executor  *workerpool.Pool
}

// Option configures a single CallBlockingFromEvent dispatch, or (via
// ToAsync's options) an adapter's default dispatch behaviour.
type Option func(*blockingConfig)

// Sensitive controls whether the dispatch is thread-affine. Sensitive
// dispatches (the default) route to a single sticky worker thread, chosen
// by the rules documented on CallBlockingFromEvent; non-sensitive
// dispatches run on the (resizable, possibly custom) executor pool instead
// and carry no thread-affinity guarantee at all.
func Sensitive(v bool) Option {
	return func(c *blockingConfig) { c.sensitive = v }
}

// WithExecutor selects a specific non-sensitive executor pool. It is
// invalid to combine with Sensitive(true): a sensitive dispatch has no use
// for a bounded-concurrency pool, since it only ever uses one thread.
func WithExecutor(p *workerpool.Pool) Option {
	return func(c *blockingConfig) { c.executor = p }
}

func resolveOptions(opts []Option) blockingConfig {
	cfg := blockingConfig{sensitive: true}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// CallBlockingFromEvent runs fn on a thread-driven worker and returns its
// result, blocking only the calling goroutine (never the event loop that
// goroutine was spawned from). It is the bridge's ED -> TD adapter: the Go
// analogue of asgiref's sync_to_async.
//
// Dispatch target, in priority order:
//  1. The sensitive worker installed by the nearest enclosing
//     SensitiveContext, if any.
//  2. The thread-driven goroutine that is currently parked in
//     CallEventFromBlocking waiting on the coroutine this call is running
//     inside of, if this coroutine descends from one.
//  3. The process-wide default sensitive worker.
//
// Case 3 applies whenever a coroutine has no thread-driven ancestor at
// all (it was spawned directly onto a loop, not reached via
// CallEventFromBlocking) and is outside any SensitiveContext: every such
// call, regardless of which coroutine makes it, lands on the same global
// worker thread, so event-loop-originated chains share one sticky thread.
//
// Sensitive(false) skips all of that and dispatches onto an executor pool
// instead: DefaultPool(), or whatever pool WithExecutor names.
func CallBlockingFromEvent(ctx context.Context, fn BlockingFunc, opts ...Option) (any, error) {
	cfg := resolveOptions(opts)

	// A panic in fn surfaces as a *PropagatedError on every dispatch path.
	user := fn
	fn = func(c context.Context, args ...any) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PropagatedError{Value: r}
			}
		}()
		return user(c, args...)
	}

	if !cfg.sensitive {
		pool := cfg.executor
		if pool == nil {
			pool = DefaultPool()
		}
		fut := pool.Submit(ctx, func(c context.Context) (any, error) { return fn(c) })
		select {
		case <-fut.Done():
			return fut.Wait(context.Background())
		case <-ctx.Done():
			return nil, &CancelledError{Cause: ctx.Err()}
		}
	}

	if cfg.executor != nil {
		return nil, ErrInvalidConfig
	}

	if w, ok := sensitiveOverrideFrom(ctx); ok {
		return submitToWorker(ctx, w, fn)
	}
	if tid, ok := parentBlockingThreadFrom(ctx); ok {
		return submitToMailbox(ctx, tid, fn)
	}
	return submitToWorker(ctx, globalWorker(), fn)
}

func submitToWorker(ctx context.Context, w *stickyworker.Worker, fn BlockingFunc) (any, error) {
	ch, err := w.Submit(ctx, func(c context.Context) (any, error) { return fn(c) })
	if err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, &CancelledError{Cause: ctx.Err()}
	}
}
