package bridge

import (
	"sync"

	"github.com/joeycumines/edtdbridge/stickyworker"
	"github.com/joeycumines/edtdbridge/workerpool"
)

// defaultPool is the process-wide executor used by non-sensitive
// call_blocking_from_event dispatches that don't specify their own
// executor. A host may resize it (DefaultPool().Resize(n)) but it is never
// swapped out for a different pool.
var defaultPoolOnce sync.Once
var defaultPool *workerpool.Pool

// DefaultPool returns the process-wide non-sensitive executor, starting it
// on first use.
func DefaultPool() *workerpool.Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = workerpool.New(0)
	})
	return defaultPool
}

// globalWorkerOnce guards the lazily-started global sensitive worker (W0):
// the thread every sensitive call_blocking_from_event call lands on when
// there is no enclosing SensitiveContext and no parent
// thread-driven caller to route back to.
var globalWorkerOnce sync.Once
var globalW0 *stickyworker.Worker

func globalWorker() *stickyworker.Worker {
	globalWorkerOnce.Do(func() {
		globalW0 = stickyworker.Start()
	})
	return globalW0
}
