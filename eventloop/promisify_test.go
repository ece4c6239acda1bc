package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPromisify_ResolvesWithValue(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	p := l.Promisify(context.Background(), func(ctx context.Context) (any, error) {
		return "hello", nil
	})

	select {
	case res := <-p.ToChannel():
		if res != "hello" {
			t.Fatalf("got %v, want hello", res)
		}
	case <-time.After(time.Second):
		t.Fatal("promise never settled")
	}
	if p.State() != Resolved {
		t.Fatalf("State() = %v, want Resolved", p.State())
	}
}

func TestPromisify_RejectsWithError(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	wantErr := errors.New("boom")
	p := l.Promisify(context.Background(), func(ctx context.Context) (any, error) {
		return nil, wantErr
	})

	res := <-p.ToChannel()
	if !errors.Is(res.(error), wantErr) {
		t.Fatalf("got %v, want %v", res, wantErr)
	}
	if p.State() != Rejected {
		t.Fatalf("State() = %v, want Rejected", p.State())
	}
}

// TestPromisify_SettlesAfterShutdownRace covers a coroutine that finishes
// after the loop has already been told to stop: its settlement task must
// still be delivered (run inline, since nothing will ever drain the task
// queue again) rather than being silently dropped.
func TestPromisify_SettlesAfterShutdownRace(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	go l.Run(context.Background())

	release := make(chan struct{})
	p := l.Promisify(context.Background(), func(ctx context.Context) (any, error) {
		<-release
		return 7, nil
	})

	shutdownDone := make(chan error, 1)
	go func() { shutdownDone <- l.Shutdown(context.Background()) }()
	close(release)
	if err := <-shutdownDone; err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case res := <-p.ToChannel():
		if res != 7 {
			t.Fatalf("got %v, want 7", res)
		}
	case <-time.After(time.Second):
		t.Fatal("promise never settled after loop shutdown")
	}
}
