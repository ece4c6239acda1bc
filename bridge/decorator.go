package bridge

import (
	"context"
	"reflect"
	"runtime"

	"github.com/joeycumines/edtdbridge/workerpool"
)

// AsyncCallable is the value produced by ToAsync: a coroutine-shaped
// wrapper around a thread-driven function, suitable for calling from
// event-driven code via Call (equivalently, from any CoroFunc body).
type AsyncCallable struct {
	name      string
	receiver  any
	sensitive bool
	executor  *workerpool.Pool
	fn        BlockingFunc
}

// Name returns the wrapped function's name, best-effort: it reflects the
// underlying func value's entry point, so it is accurate for package-level
// functions and method values but synthetic (e.g. "pkg.glob..func1") for
// closures and lambdas.
func (a *AsyncCallable) Name() string { return a.name }

// Receiver returns the bound instance supplied via WithReceiver when the
// wrapped function was a method value, or nil if none was given. Go has no
// way to recover a closure's captured receiver by reflection alone, so
// unlike Python's automatic __self__ this must be supplied explicitly by
// the caller constructing the adapter.
func (a *AsyncCallable) Receiver() any { return a.receiver }

// IsCoroutineFunction always reports true: an AsyncCallable is, by
// construction, a coroutine function as far as ToSync and any other
// coroutine-kind check in this package are concerned.
func (a *AsyncCallable) IsCoroutineFunction() bool { return true }

// Call runs the wrapped thread-driven function via CallBlockingFromEvent,
// using the sensitivity and executor this adapter was built with.
func (a *AsyncCallable) Call(ctx context.Context, args ...any) (any, error) {
	opts := []Option{Sensitive(a.sensitive)}
	if a.executor != nil {
		opts = append(opts, WithExecutor(a.executor))
	}
	return CallBlockingFromEvent(ctx, func(c context.Context, _ ...any) (any, error) {
		return a.fn(c, args...)
	}, opts...)
}

// asyncConfig holds ToAsync's constructor-time options.
type asyncConfig struct {
	sensitive bool
	executor  *workerpool.Pool
	receiver  any
}

// AsyncOption configures ToAsync.
type AsyncOption func(*asyncConfig)

// AsyncSensitive sets whether the adapter's dispatches are thread-affine.
// Defaults to true, matching sync_to_async's default.
func AsyncSensitive(v bool) AsyncOption { return func(c *asyncConfig) { c.sensitive = v } }

// AsyncExecutor selects a specific executor pool for a non-sensitive
// adapter. Combining this with AsyncSensitive(true) (the default) is an
// InvalidConfig error.
func AsyncExecutor(p *workerpool.Pool) AsyncOption { return func(c *asyncConfig) { c.executor = p } }

// WithReceiver records the bound instance a method value was taken from,
// so it can be recovered later via AsyncCallable.Receiver or
// SyncCallable.Receiver.
func WithReceiver(recv any) AsyncOption { return func(c *asyncConfig) { c.receiver = recv } }

// ToAsync adapts a thread-driven function into an AsyncCallable. fn must
// be a BlockingFunc or a compatible plain func shape; a coroutine function
// (a CoroFunc, or a value whose IsCoroutineFunction reports true, such as
// another AsyncCallable) is rejected with ErrInvalidKind, matching
// sync_to_async's rejection of already-async callables. The unnamed
// func(context.Context, ...any) (any, error) shape is accepted by both
// ToAsync and ToSync.
func ToAsync(fn any, opts ...AsyncOption) (*AsyncCallable, error) {
	cfg := asyncConfig{sensitive: true}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.sensitive && cfg.executor != nil {
		return nil, ErrInvalidConfig
	}

	blocking, name, err := asBlocking(fn)
	if err != nil {
		return nil, err
	}

	return &AsyncCallable{
		name:      name,
		receiver:  cfg.receiver,
		sensitive: cfg.sensitive,
		executor:  cfg.executor,
		fn:        blocking,
	}, nil
}

// SyncCallable is the value produced by ToSync: a callable wrapper around
// an event-driven coroutine, suitable for calling from thread-driven code
// via Call.
type SyncCallable struct {
	name     string
	receiver any
	fn       CoroFunc
}

// Name returns the wrapped coroutine's name, with the same accuracy
// caveats as AsyncCallable.Name.
func (s *SyncCallable) Name() string { return s.name }

// Receiver returns the bound instance supplied via WithReceiver, or nil.
func (s *SyncCallable) Receiver() any { return s.receiver }

// Call runs the wrapped coroutine via CallEventFromBlocking.
func (s *SyncCallable) Call(ctx context.Context, args ...any) (any, error) {
	return CallEventFromBlocking(ctx, func(c context.Context, a ...any) (any, error) {
		return s.fn(c, a...)
	}, args...)
}

// ToSync adapts an event-driven coroutine into a SyncCallable. fn must be
// a CoroFunc, a compatible plain func shape, or an *AsyncCallable; any
// other value, including a BlockingFunc or a SyncCallable, is rejected with
// ErrInvalidKind, matching async_to_sync's rejection of sync callables.
func ToSync(fn any, opts ...AsyncOption) (*SyncCallable, error) {
	cfg := asyncConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	coro, name, err := asCoroutine(fn)
	if err != nil {
		return nil, err
	}

	return &SyncCallable{name: name, receiver: cfg.receiver, fn: coro}, nil
}

func asBlocking(fn any) (BlockingFunc, string, error) {
	if cf, ok := fn.(coroutineFunction); ok && cf.IsCoroutineFunction() {
		return nil, "", kindError("ToAsync", "sync")
	}
	switch f := fn.(type) {
	case BlockingFunc:
		return f, funcName(f), nil
	case func(context.Context, ...any) (any, error):
		return f, funcName(f), nil
	case func(context.Context) (any, error):
		return func(ctx context.Context, _ ...any) (any, error) { return f(ctx) }, funcName(f), nil
	case func(context.Context):
		return func(ctx context.Context, _ ...any) (any, error) { f(ctx); return nil, nil }, funcName(f), nil
	case func() (any, error):
		return func(context.Context, ...any) (any, error) { return f() }, funcName(f), nil
	case func():
		return func(context.Context, ...any) (any, error) { f(); return nil, nil }, funcName(f), nil
	default:
		// Covers CoroFunc, *AsyncCallable, and anything else that isn't a
		// recognized sync shape.
		return nil, "", kindError("ToAsync", "sync")
	}
}

func asCoroutine(fn any) (CoroFunc, string, error) {
	switch f := fn.(type) {
	case CoroFunc:
		return f, funcName(f), nil
	case func(context.Context, ...any) (any, error):
		return f, funcName(f), nil
	case func(context.Context) (any, error):
		return func(ctx context.Context, _ ...any) (any, error) { return f(ctx) }, funcName(f), nil
	case func() (any, error):
		return func(context.Context, ...any) (any, error) { return f() }, funcName(f), nil
	case *AsyncCallable:
		// An AsyncCallable always reports IsCoroutineFunction() == true, so
		// it is itself valid wherever a coroutine is expected; ToSync just
		// adapts its Call method, matching async_to_sync's acceptance of an
		// already-async callable.
		return f.Call, f.name, nil
	case BlockingFunc:
		return nil, "", kindError("ToSync", "async")
	default:
		return nil, "", kindError("ToSync", "async")
	}
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	if rf := runtime.FuncForPC(v.Pointer()); rf != nil {
		return rf.Name()
	}
	return ""
}
