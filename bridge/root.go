package bridge

import (
	"sync"

	"github.com/joeycumines/edtdbridge/eventloop"
	"github.com/joeycumines/edtdbridge/internal/gid"
)

// rootThreadID is captured the first time this package is touched, which
// in practice is during the goroutine that runs main() or an early init().
// It stands in for the "root thread": the one thread-driven goroutine
// whose event loop, once created, is worth keeping around across calls
// instead of discarding after every call_event_from_blocking.
var rootThreadID = gid.Current()

// rootLoopState tracks the single reusable loop bound to the root thread.
// A non-root caller never touches this; it always gets a fresh ad-hoc loop
// per call, run to completion and closed when the call returns.
//
// The root loop's Run goroutine, once started, is never stopped: Loop.Shutdown
// permanently terminates a loop (it cannot be Run again), so reuse across
// calls means leaving that goroutine dispatching indefinitely and only ever
// submitting new coroutines to it, never shutting it down between calls.
var rootLoopState struct {
	mu      sync.Mutex
	loop    *eventloop.Loop
	running bool
	inUse   bool
}

// acquireRootLoop returns (loop, needsStart, true) if the calling goroutine
// is the root thread and the root loop is free to service a new
// call_event_from_blocking. needsStart is true exactly once per process: the
// first caller to reach this point is responsible for starting the loop's
// Run goroutine (CallEventFromBlocking does so); later callers reuse the one already
// running. It returns ok=false if the calling goroutine is not the root
// thread, or the root loop is already busy servicing an outer
// call_event_from_blocking (in which case the caller should fall back to an
// ad-hoc loop instead).
func acquireRootLoop(tid gid.ID) (loop *eventloop.Loop, needsStart bool, ok bool) {
	if tid != rootThreadID {
		return nil, false, false
	}
	rootLoopState.mu.Lock()
	defer rootLoopState.mu.Unlock()
	if rootLoopState.inUse {
		return nil, false, false
	}
	if rootLoopState.loop == nil {
		l, err := eventloop.New()
		if err != nil {
			return nil, false, false
		}
		rootLoopState.loop = l
	}
	needsStart = !rootLoopState.running
	rootLoopState.running = true
	rootLoopState.inUse = true
	return rootLoopState.loop, needsStart, true
}

// releaseRootLoop marks the root loop free for the next call_event_from_blocking
// on the root thread. The loop itself is left running, not shut down: tearing
// one down and rebuilding it on every call would defeat the point of having
// a thread-affine root loop at all.
func releaseRootLoop() {
	rootLoopState.mu.Lock()
	rootLoopState.inUse = false
	rootLoopState.mu.Unlock()
}
