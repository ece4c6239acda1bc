package bridge

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, matched with errors.Is, for the three misuse
// failures of cross-discipline calls; an adapter-kind error wraps
// ErrInvalidKind so callers can branch on kind without string matching.
// Cancellation and recovered panics are reported by the concrete types
// CancelledError and PropagatedError below, which wrap none of these.
var (
	// ErrInvalidKind is returned when a value passed to ToAsync/ToSync is
	// not a callable of the shape the adapter expects.
	ErrInvalidKind = errors.New("bridge: invalid kind")

	// ErrInvalidConfig is returned when an adapter is constructed with a
	// contradictory option combination (e.g. a sensitive adapter given an
	// explicit executor).
	ErrInvalidConfig = errors.New("bridge: invalid config")

	// ErrInvalidContext is returned by CallEventFromBlocking when the
	// calling goroutine is already dispatching an event loop: crossing
	// into event-driven code from there would re-enter the loop on its
	// own dispatch goroutine, which the loop itself cannot run.
	ErrInvalidContext = errors.New("bridge: invalid context")
)

// CancelledError reports that a call_blocking_from_event dispatch was
// abandoned because its context was cancelled while waiting for (or for
// the result of) the underlying job. The job itself is not stopped; its
// eventual result, if any, is simply discarded.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("bridge: cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// PropagatedError wraps a panic recovered from user-supplied blocking or
// coroutine code, so a failure on a worker thread or loop goroutine
// surfaces as an ordinary error at the call site rather than taking down
// an unrelated goroutine.
type PropagatedError struct {
	Value any
}

func (e *PropagatedError) Error() string {
	return fmt.Sprintf("bridge: propagated panic: %v", e.Value)
}

func kindError(adapter, want string) error {
	return fmt.Errorf("%s can only be applied to %s functions.: %w", adapter, want, ErrInvalidKind)
}
