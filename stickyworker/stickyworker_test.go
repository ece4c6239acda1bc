package stickyworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joeycumines/edtdbridge/internal/gid"
)

func TestWorker_SubmitReturnsValue(t *testing.T) {
	w := Start()
	defer w.Shutdown(context.Background())

	ch, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return "hello", nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	r := <-ch
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if r.Value != "hello" {
		t.Fatalf("got %v, want hello", r.Value)
	}
}

func TestWorker_JobsRunOnSameThread(t *testing.T) {
	w := Start()
	defer w.Shutdown(context.Background())

	const n = 10
	results := make(chan gid.ID, n)
	for i := 0; i < n; i++ {
		ch, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
			return gid.Current(), nil
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		r := <-ch
		results <- r.Value.(gid.ID)
	}
	close(results)

	for tid := range results {
		if tid != w.ThreadID() {
			t.Fatalf("job ran on thread %v, want worker's own thread %v", tid, w.ThreadID())
		}
	}
}

func TestWorker_FIFOOrder(t *testing.T) {
	w := Start()
	defer w.Shutdown(context.Background())

	const n = 50
	order := make(chan int, n)
	chans := make([]<-chan Result, n)
	for i := 0; i < n; i++ {
		i := i
		ch, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
			order <- i
			return i, nil
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		chans[i] = ch
	}
	for i := 0; i < n; i++ {
		<-chans[i]
	}
	close(order)

	i := 0
	for got := range order {
		if got != i {
			t.Fatalf("job %d executed out of order (saw %d)", i, got)
		}
		i++
	}
}

func TestWorker_PanicRecovered(t *testing.T) {
	w := Start()
	defer w.Shutdown(context.Background())

	ch, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	r := <-ch
	if r.Err == nil {
		t.Fatal("expected an error from a panicking job")
	}

	// The worker must still be usable after a panic.
	ch2, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return "still alive", nil
	})
	if err != nil {
		t.Fatalf("Submit failed after panic recovery: %v", err)
	}
	r2 := <-ch2
	if r2.Value != "still alive" {
		t.Fatalf("got %v, want still alive", r2.Value)
	}
}

func TestWorker_SubmitAfterShutdown(t *testing.T) {
	w := Start()
	if err := w.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	_, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestWorker_ShutdownDrainsPending(t *testing.T) {
	w := Start()

	started := make(chan struct{})
	release := make(chan struct{})
	ch, err := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	<-started
	shutdownDone := make(chan error, 1)
	go func() {
		shutdownDone <- w.Shutdown(context.Background())
	}()

	select {
	case <-shutdownDone:
		t.Fatal("Shutdown returned before the in-flight job finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if err := <-shutdownDone; err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	r := <-ch
	if r.Value != "done" {
		t.Fatalf("got %v, want done", r.Value)
	}
}

func TestWorker_QueueDepth(t *testing.T) {
	w := Start()
	defer w.Shutdown(context.Background())

	release := make(chan struct{})
	ch1, _ := w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})
	w.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	})

	time.Sleep(10 * time.Millisecond)
	if depth := w.QueueDepth(); depth != 1 {
		t.Fatalf("QueueDepth() = %d, want 1", depth)
	}

	close(release)
	<-ch1
}

