package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/joeycumines/edtdbridge/workerpool"
)

func TestToAsync_RejectsCoroutine(t *testing.T) {
	async, err := ToAsync(func(ctx context.Context, _ ...any) (any, error) { return nil, nil })
	if err != nil {
		t.Fatalf("ToAsync failed: %v", err)
	}

	_, err = ToAsync(async)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("got %v, want ErrInvalidKind", err)
	}
}

func TestToSync_RejectsSyncFunction(t *testing.T) {
	sync, err := ToSync(func(ctx context.Context, _ ...any) (any, error) { return nil, nil })
	if err != nil {
		t.Fatalf("ToSync failed: %v", err)
	}

	_, err = ToSync(sync)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("got %v, want ErrInvalidKind", err)
	}
}

func TestToAsync_IsClassifiedAsCoroutine(t *testing.T) {
	async, err := ToAsync(func(ctx context.Context, _ ...any) (any, error) { return 1, nil })
	if err != nil {
		t.Fatalf("ToAsync failed: %v", err)
	}
	if !async.IsCoroutineFunction() {
		t.Fatal("AsyncCallable must classify as a coroutine function")
	}

	// And it must be acceptable wherever a coroutine is expected.
	if _, err := ToSync(async); err != nil {
		t.Fatalf("ToSync(async) should accept an AsyncCallable, got: %v", err)
	}
}

func TestToAsync_SensitiveWithExecutorIsInvalidConfig(t *testing.T) {
	pool := workerpool.New(1)
	_, err := ToAsync(func(ctx context.Context, _ ...any) (any, error) { return nil, nil },
		AsyncSensitive(true), AsyncExecutor(pool))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v, want ErrInvalidConfig", err)
	}
}

func TestToAsync_ToSync_RoundTrip(t *testing.T) {
	g := func(ctx context.Context, args ...any) (any, error) {
		n := args[0].(int)
		if n < 0 {
			return nil, errors.New("negative")
		}
		return n * 2, nil
	}

	sync, err := ToSync(CoroFunc(g))
	if err != nil {
		t.Fatalf("ToSync failed: %v", err)
	}
	async, err := ToAsync(sync.Call)
	if err != nil {
		t.Fatalf("ToAsync failed: %v", err)
	}

	r, err := async.Call(context.Background(), 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != 42 {
		t.Fatalf("got %v, want 42", r)
	}

	_, err = async.Call(context.Background(), -1)
	if err == nil {
		t.Fatal("expected an error for a negative argument")
	}
}

func TestWithReceiver_PreservesReceiverAndName(t *testing.T) {
	type service struct{ id string }
	svc := &service{id: "svc-1"}

	async, err := ToAsync(func(ctx context.Context, _ ...any) (any, error) { return nil, nil },
		WithReceiver(svc))
	if err != nil {
		t.Fatalf("ToAsync failed: %v", err)
	}
	if async.Receiver() != svc {
		t.Fatalf("Receiver() = %v, want %v", async.Receiver(), svc)
	}
	if async.Name() == "" {
		t.Fatal("Name() should not be empty for a package-level function literal")
	}
}
