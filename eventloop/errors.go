package eventloop

import "errors"

// ErrLoopTerminated is returned by [Loop.Run] when called on a loop that has
// already been shut down. A loop's Run method must not be called more than
// once, and never after [Loop.Shutdown]: termination is permanent.
var ErrLoopTerminated = errors.New("eventloop: loop is terminated")
