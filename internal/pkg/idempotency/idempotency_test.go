package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestExecOnce(t *testing.T) {
	// Arrange
	tr, mr := newTracker(t)
	ctx := context.Background()
	runs := 0
	fn := func(context.Context) error { runs++; return nil }

	// Act
	first := tr.Exec(ctx, "register:ada@example.com", fn, WithStateTTL(time.Minute))
	second := tr.Exec(ctx, "register:ada@example.com", fn)

	// Assert
	if first != nil {
		t.Fatalf("first Exec() error = %v", first)
	}
	if !errors.Is(second, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", second)
	}
	if runs != 1 {
		t.Fatalf("fn ran %d times", runs)
	}

	mr.FastForward(time.Minute)
	if err := tr.Exec(ctx, "register:ada@example.com", fn); err != nil {
		t.Fatalf("Exec() after TTL error = %v", err)
	}
}

func TestExecInProgress(t *testing.T) {
	tr, mr := newTracker(t)
	if err := mr.Set("idempotency:k", StateInProgress.String()); err != nil {
		t.Fatal(err)
	}

	err := tr.Exec(context.Background(), "k", func(context.Context) error { return nil })

	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
}

func TestExecFailed(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	if err := tr.Exec(ctx, "k", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := tr.Exec(ctx, "k", func(context.Context) error { return nil }); !errors.Is(err, ErrAlreadyFailed) {
		t.Fatalf("expected ErrAlreadyFailed, got %v", err)
	}
	if err := tr.Exec(ctx, "k", func(context.Context) error { return nil }, WithRetryFailed()); err != nil {
		t.Fatalf("retry of failed key error = %v", err)
	}
}

func TestAcquireInvalidState(t *testing.T) {
	tr, mr := newTracker(t)
	if err := mr.Set("idempotency:k", "garbage"); err != nil {
		t.Fatal(err)
	}

	state, err := tr.Acquire(context.Background(), "k", time.Minute)

	if state != StateError || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %s, %v", state, err)
	}
}
