// Package registry tracks, for every goroutine currently dispatching an
// event loop, which loop it is dispatching. It answers the single question
// the bridge needs to ask before crossing from thread-driven code into
// event-driven code: "is the calling goroutine already inside a running
// loop?"
//
// It is a small map guarded by a read-write mutex, sized for many more
// readers (is-this-thread-a-loop-thread checks
// on every bridge call) than writers (loop start/stop, which happens once
// per ad-hoc loop).
package registry

import (
	"sync"

	"github.com/joeycumines/edtdbridge/internal/gid"
)

// Loop is the minimal surface the registry needs from an event loop. It is
// defined here, rather than importing the eventloop package directly, so
// the registry has no compile-time dependency on any particular loop
// implementation.
type Loop any

// Registry is the process-global thread-to-loop map described by the
// bridge's data model. A single instance (see [Global]) is shared by every
// bridge call; tests may construct private instances to avoid cross-test
// interference.
type Registry struct {
	mu    sync.RWMutex
	loops map[gid.ID]Loop
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{loops: make(map[gid.ID]Loop)}
}

// Global is the process-wide registry used by the bridge's public API.
var Global = New()

// RegisterLoop records that goroutine tid is now dispatching loop l.
// Call it when a loop's run phase begins.
func (r *Registry) RegisterLoop(tid gid.ID, l Loop) {
	r.mu.Lock()
	r.loops[tid] = l
	r.mu.Unlock()
}

// UnregisterLoop forgets the association set up by RegisterLoop. Call it
// when a loop's run phase ends, even on error paths.
func (r *Registry) UnregisterLoop(tid gid.ID) {
	r.mu.Lock()
	delete(r.loops, tid)
	r.mu.Unlock()
}

// CurrentLoop returns the loop goroutine tid is dispatching, if any.
func (r *Registry) CurrentLoop(tid gid.ID) (Loop, bool) {
	r.mu.RLock()
	l, ok := r.loops[tid]
	r.mu.RUnlock()
	return l, ok
}

// IsEventLoopThread reports whether goroutine tid is currently dispatching
// any loop.
func (r *Registry) IsEventLoopThread(tid gid.ID) bool {
	r.mu.RLock()
	_, ok := r.loops[tid]
	r.mu.RUnlock()
	return ok
}
