package bridge

import (
	"context"

	"github.com/joeycumines/edtdbridge/eventloop"
	"github.com/joeycumines/edtdbridge/internal/gid"
	"github.com/joeycumines/edtdbridge/stickyworker"
)

// The per-ED-task state the bridge spec calls context-local — the
// sensitive worker override and the originating blocking thread — is
// carried on a context.Context, exactly as the design notes prescribe for
// a language without first-class context-locals: an immutable value
// threaded explicitly through every continuation. context.Context already
// IS that immutable, chainable value in Go, so no bespoke propagation
// machinery is needed; we just define typed keys for it.

type ctxKey int

const (
	loopKey ctxKey = iota
	sensitiveOverrideKey
	parentBlockingThreadKey
)

func withLoop(ctx context.Context, l *eventloop.Loop) context.Context {
	return context.WithValue(ctx, loopKey, l)
}

func loopFrom(ctx context.Context) (*eventloop.Loop, bool) {
	l, ok := ctx.Value(loopKey).(*eventloop.Loop)
	return l, ok
}

func withSensitiveOverride(ctx context.Context, sc *SensitiveContext) context.Context {
	return context.WithValue(ctx, sensitiveOverrideKey, sc)
}

// sensitiveContextFrom returns the nearest enclosing SensitiveContext
// handle, unresolved, for propagation into a child context without forcing
// its worker to start.
func sensitiveContextFrom(ctx context.Context) (*SensitiveContext, bool) {
	sc, ok := ctx.Value(sensitiveOverrideKey).(*SensitiveContext)
	return sc, ok
}

// sensitiveOverrideFrom returns the worker backing the nearest enclosing
// SensitiveContext, starting it on first use. Because context.Value walks
// outward from the most recently added key, nested SensitiveContext scopes
// resolve "innermost wins" for free.
func sensitiveOverrideFrom(ctx context.Context) (*stickyworker.Worker, bool) {
	sc, ok := sensitiveContextFrom(ctx)
	if !ok {
		return nil, false
	}
	return sc.resolve(), true
}

func withParentBlockingThread(ctx context.Context, tid gid.ID) context.Context {
	return context.WithValue(ctx, parentBlockingThreadKey, tid)
}

func parentBlockingThreadFrom(ctx context.Context) (gid.ID, bool) {
	tid, ok := ctx.Value(parentBlockingThreadKey).(gid.ID)
	return tid, ok
}
