package eventloop

import "context"

// Promisify runs fn on a new goroutine, outside the loop's own dispatch
// goroutine, and returns a [Promise] that settles with fn's result. The
// settlement itself is routed back through the loop's task queue (not
// delivered directly from fn's goroutine), so that a goroutine parked on
// [Loop.Run] observes settlements one at a time, in the order they complete,
// the same way it observes any other queued task.
//
// Promisify may be called before Run has started dispatching: the
// settlement task simply waits until a Run call receives it (or, if the
// loop has already stopped by the time fn finishes, runs immediately on
// fn's own goroutine instead of blocking forever). A panic in fn rejects
// the promise with the recovered panic value.
func (l *Loop) Promisify(ctx context.Context, fn func(context.Context) (any, error)) *Promise {
	p := newPromise()
	go func() {
		var state PromiseState
		var result Result
		defer func() {
			if r := recover(); r != nil {
				state, result = Rejected, Result(r)
			}
			l.submit(func() { p.settle(state, result) })
		}()
		v, err := fn(ctx)
		state, result = Resolved, Result(v)
		if err != nil {
			state, result = Rejected, Result(err)
		}
	}()
	return p
}
