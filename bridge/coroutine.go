package bridge

import (
	"context"

	"github.com/joeycumines/edtdbridge/eventloop"
	"github.com/joeycumines/edtdbridge/internal/gid"
	"github.com/joeycumines/edtdbridge/registry"
	"github.com/joeycumines/edtdbridge/stickyworker"
)

// CallEventFromBlocking runs coro to completion on an event loop and
// blocks the calling (thread-driven) goroutine until it settles. It is the
// bridge's TD -> ED adapter: the Go analogue of asgiref's async_to_sync.
//
// The calling goroutine must not already be dispatching an event loop;
// doing so returns ErrInvalidContext, since the loop cannot be re-entered
// from its own dispatch goroutine. Ordinary re-entrance - the same OS
// thread running a nested TD->ED->TD->ED chain through intermediate
// goroutines - is fine and is exactly what the mailbox below exists for.
func CallEventFromBlocking(ctx context.Context, coro CoroFunc, args ...any) (any, error) {
	tid := gid.Current()
	if registry.Global.IsEventLoopThread(tid) {
		return nil, ErrInvalidContext
	}

	loop, needsStart, fromRoot := acquireRootLoop(tid)
	if !fromRoot {
		var err error
		loop, err = eventloop.New()
		if err != nil {
			return nil, err
		}
	}
	adHoc := !fromRoot

	defer func() {
		if fromRoot {
			releaseRootLoop()
		} else if adHoc {
			_ = loop.Shutdown(context.Background())
			_ = loop.Close()
		}
	}()

	coroCtx := ctx
	if sc, ok := sensitiveContextFrom(ctx); ok {
		coroCtx = withSensitiveOverride(coroCtx, sc)
	}
	coroCtx = withParentBlockingThread(coroCtx, tid)
	coroCtx = withLoop(coroCtx, loop)

	// The mailbox is pushed before the coroutine starts, so a nested
	// CallBlockingFromEvent routed back to tid always finds it.
	mb := pushMailbox(tid)
	defer popMailbox(tid)

	promise := loop.Promisify(coroCtx, func(c context.Context) (any, error) {
		return coro(c, args...)
	})

	// A root-thread loop runs for the life of the process once started: its
	// Run goroutine must not be tied to this call's ctx (which may be
	// cancelled while the loop is later reused for an unrelated call), and
	// it must not be started again on every reuse.
	if !fromRoot || needsStart {
		runCtx := coroCtx
		if fromRoot {
			runCtx = context.Background()
		}
		go func() {
			htid := gid.Current()
			registry.Global.RegisterLoop(htid, loop)
			if !fromRoot {
				defer registry.Global.UnregisterLoop(htid)
			}
			_ = loop.Run(runCtx)
		}()
	}

	var res eventloop.Result
waitLoop:
	for {
		select {
		case res = <-promise.ToChannel():
			break waitLoop
		case job := <-mb.ch:
			r := runMailboxJob(job)
			select {
			case job.out <- r:
			default:
			}
		}
	}

	if promise.State() == eventloop.Rejected {
		if err, ok := res.(error); ok {
			return nil, err
		}
		return nil, &PropagatedError{Value: res}
	}
	return res, nil
}

func runMailboxJob(j mailboxJob) (result stickyworker.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = stickyworker.Result{Err: &PropagatedError{Value: r}}
		}
	}()
	v, err := j.fn(j.ctx)
	return stickyworker.Result{Value: v, Err: err}
}
