// Package wsgi supplies the one call site the distilled bridge spec
// attributes to a WSGI-style protocol adapter: a blocking callable that
// produces a sequence of byte chunks, run through CallBlockingFromEvent so
// an event-driven caller can consume the chunks as they arrive without
// blocking the loop. It does not implement WSGI, HTTP, or any wire format;
// those remain out of scope.
package wsgi

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/edtdbridge/bridge"
)

// RunChunked starts produce on a thread-driven worker via
// CallBlockingFromEvent and streams the chunks it yields back to the
// caller over the returned channel. produce is handed a yield function:
// each call posts one chunk and blocks until it is received or ctx is
// done. The chunk channel is closed once produce returns (successfully or
// not), or, if the dispatch ends before produce has started, when the
// dispatch returns, in which case produce is never run. The error channel
// receives the dispatch's final error (produce's error, or a
// *bridge.CancelledError if ctx was done first; nil on success) exactly
// once and is then closed.
//
// RunChunked itself never blocks: the dispatch to CallBlockingFromEvent
// happens on a goroutine of its own, so the caller (an event-driven task)
// can keep servicing other work while chunks trickle in.
func RunChunked(ctx context.Context, produce func(yield func([]byte) error) error) (<-chan []byte, <-chan error) {
	chunks := make(chan []byte)
	errs := make(chan error, 1)

	go func() {
		// claimed decides, exactly once, who closes chunks: the job, after
		// produce returns, or this goroutine, if the dispatch returned before
		// the job started produce (the job then never runs it).
		var claimed atomic.Bool

		yield := func(chunk []byte) error {
			select {
			case chunks <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := bridge.CallBlockingFromEvent(ctx, func(c context.Context, _ ...any) (any, error) {
			if !claimed.CompareAndSwap(false, true) {
				return nil, ctx.Err()
			}
			defer close(chunks)
			return nil, produce(yield)
		})
		if claimed.CompareAndSwap(false, true) {
			close(chunks)
		}

		errs <- err
		close(errs)
	}()

	return chunks, errs
}
