package bridge

import (
	"context"
	"sync"

	"github.com/joeycumines/edtdbridge/internal/gid"
	"github.com/joeycumines/edtdbridge/stickyworker"
)

// mailboxJob is a blocking job routed to a specific thread-driven goroutine
// via its mailbox, rather than to a stickyworker.Worker or workerpool.Pool.
// It is used for the "route back to the thread that is parked waiting on
// this coroutine" dispatch case: CallBlockingFromEvent and
// CallEventFromBlocking's own park loop share this type so a job can move
// between them without conversion.
type mailboxJob struct {
	ctx context.Context
	fn  BlockingFunc
	out chan stickyworker.Result
}

type mailbox struct {
	ch chan mailboxJob
}

// mailboxes holds, per goroutine, a stack of mailboxes: one per active
// (nested) CallEventFromBlocking frame parked on that goroutine. A stack
// rather than a single slot because a thread-driven chain can re-enter the
// event loop more than once on the same physical goroutine (the root
// thread, or a sensitive worker thread, running a nested ED->TD->ED->TD
// chain); only the innermost frame is ever actually polling at a given
// moment, since outer frames are blocked further down the same call stack.
var (
	mailboxMu     sync.Mutex
	mailboxStacks = map[gid.ID][]*mailbox{}
)

// pushMailbox registers a new innermost mailbox for the calling goroutine
// and returns it. The caller must pop it (via popMailbox) once it stops
// polling, even on an error path.
func pushMailbox(tid gid.ID) *mailbox {
	mb := &mailbox{ch: make(chan mailboxJob)}
	mailboxMu.Lock()
	mailboxStacks[tid] = append(mailboxStacks[tid], mb)
	mailboxMu.Unlock()
	return mb
}

func popMailbox(tid gid.ID) {
	mailboxMu.Lock()
	s := mailboxStacks[tid]
	if n := len(s); n > 0 {
		s = s[:n-1]
		if len(s) == 0 {
			delete(mailboxStacks, tid)
		} else {
			mailboxStacks[tid] = s
		}
	}
	mailboxMu.Unlock()
}

// topMailbox returns the innermost mailbox currently registered for tid,
// if that goroutine is currently parked inside CallEventFromBlocking.
func topMailbox(tid gid.ID) (*mailbox, bool) {
	mailboxMu.Lock()
	defer mailboxMu.Unlock()
	s := mailboxStacks[tid]
	if len(s) == 0 {
		return nil, false
	}
	return s[len(s)-1], true
}

// submitToMailbox routes fn to the goroutine parked waiting on tid's
// innermost CallEventFromBlocking frame, and blocks until that goroutine
// has run it (or ctx is done). If tid is not currently parked (its
// mailbox has already been torn down, which should not happen in normal
// use) it falls back to the global sensitive worker so the call still
// completes rather than hanging forever.
func submitToMailbox(ctx context.Context, tid gid.ID, fn BlockingFunc) (any, error) {
	mb, ok := topMailbox(tid)
	if !ok {
		return submitToWorker(ctx, globalWorker(), fn)
	}

	out := make(chan stickyworker.Result, 1)
	select {
	case mb.ch <- mailboxJob{ctx: ctx, fn: fn, out: out}:
	case <-ctx.Done():
		return nil, &CancelledError{Cause: ctx.Err()}
	}

	select {
	case r := <-out:
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, &CancelledError{Cause: ctx.Err()}
	}
}
