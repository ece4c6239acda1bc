package bridge

import (
	"context"
	"sync"

	"github.com/joeycumines/edtdbridge/stickyworker"
)

// SensitiveContext scopes a single private sticky worker over a region of
// coroutine code: every sensitive call_blocking_from_event dispatch made
// with this context in scope (directly, or by a coroutine spawned from
// within it) lands on the same worker thread, regardless of whether it has
// a thread-driven ancestor. It is the bridge's analogue of asgiref's
// ThreadSensitiveContext, used by hosts (WSGI/ASGI-style request
// dispatchers chief among them) that want "one request, one thread" for
// all the sensitive work a request triggers, without pinning every request
// to the same global worker.
//
// The private worker is started lazily, on the first sensitive dispatch
// made within the scope, and shut down when Exit is called. A
// SensitiveContext that scopes no sensitive work never starts a worker.
type SensitiveContext struct {
	mu     sync.Mutex
	worker *stickyworker.Worker
}

// NewSensitiveContext creates an unentered SensitiveContext. Call Wrap on
// it to scope a context, and Exit when the scope ends.
func NewSensitiveContext() *SensitiveContext {
	return &SensitiveContext{}
}

// Wrap returns a child of ctx with this SensitiveContext installed as the
// active sensitive-dispatch target, shadowing any SensitiveContext already
// in scope.
func (s *SensitiveContext) Wrap(ctx context.Context) context.Context {
	return withSensitiveOverride(ctx, s)
}

func (s *SensitiveContext) resolve() *stickyworker.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.worker == nil {
		s.worker = stickyworker.Start()
	}
	return s.worker
}

// Exit shuts down the scope's private worker, if one was ever started.
// Once Exit has been called, dispatches that still reference this
// SensitiveContext (a coroutine that outlived its scope) fall back to
// starting a fresh worker rather than reusing the shut-down one, so a
// programming error here produces wrong thread affinity, not a panic.
func (s *SensitiveContext) Exit(ctx context.Context) error {
	s.mu.Lock()
	w := s.worker
	s.worker = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Shutdown(ctx)
}
