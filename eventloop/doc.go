// Package eventloop implements the minimal event-driven (ED) dispatch
// substrate the bridge needs: a single goroutine that owns a task queue and
// runs until told to stop.
//
// This is deliberately not a JavaScript-style runtime. It has no timers, no
// microtask queue, no I/O polling and no structured logging of its own — a
// full ED runtime is more than the bridge needs; what the bridge actually needs is
// something it can hand a coroutine to and block on, from thread-driven
// code, until that coroutine settles. [Loop] and [Promisify] are exactly
// that surface, and nothing more.
package eventloop
