// Package bridge connects two concurrency disciplines built on top of the
// [eventloop] package: event-driven (ED) code, which runs cooperatively on
// a single [eventloop.Loop] dispatch goroutine, and thread-driven (TD)
// code, which runs freely across OS threads and may block.
//
// # The two adapters
//
// [CallBlockingFromEvent] runs thread-driven work from inside a coroutine
// without blocking the loop that coroutine is scheduled on: the calling
// goroutine (itself not the loop's own dispatch goroutine, since
// coroutines run via [eventloop.Loop.Promisify]) blocks, but the loop keeps
// ticking. This is the sync_to_async direction.
//
// [CallEventFromBlocking] runs a coroutine to completion from thread-driven
// code, blocking the calling OS thread until it settles. This is the
// async_to_sync direction.
//
// Both compose to arbitrary depth: a coroutine invoked this way can itself
// call CallBlockingFromEvent, whose thread-driven body can call
// CallEventFromBlocking again, and so on.
//
// # Thread affinity
//
// A chain of thread-driven calls reached through nested ED<->TD crossings
// is expected to stay on one thread, so thread-local state set up by an
// outer frame is still visible to an inner one. CallBlockingFromEvent
// picks its dispatch thread in priority order: the worker installed by the
// nearest enclosing [SensitiveContext], then the thread-driven goroutine
// that is the root of the current chain (reached via its mailbox), then
// the process-wide default sensitive worker. Non-sensitive dispatches
// (Sensitive(false)) opt out of this entirely and run on a
// [workerpool.Pool] instead.
//
// # Higher-level adapters
//
// [ToAsync] and [ToSync] wrap a plain Go function into an [AsyncCallable]
// or [SyncCallable] respectively, validating that the wrapped value is the
// right kind (a thread-driven function for ToAsync, a coroutine for
// ToSync) before returning.
package bridge
