package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

const (
	testLimit  = 5
	testWindow = 15 * time.Minute
)

func TestLocalFixedWindow(t *testing.T) {
	// Arrange
	clk := clock.NewManual(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	l := NewLocal(clk)
	ctx := context.Background()

	// Act & Assert
	for i := range testLimit {
		ok, _, err := l.Allow(ctx, "203.0.113.7", testLimit, testWindow)
		if err != nil || !ok {
			t.Fatalf("request %d: allowed=%v err=%v", i+1, ok, err)
		}
	}

	clk.Advance(time.Minute)
	ok, retry, err := l.Allow(ctx, "203.0.113.7", testLimit, testWindow)
	if err != nil || ok {
		t.Fatalf("6th request must be limited: allowed=%v err=%v", ok, err)
	}
	if retry != 14*time.Minute {
		t.Fatalf("retryAfter = %v, want 14m", retry)
	}

	if ok, _, _ := l.Allow(ctx, "198.51.100.1", testLimit, testWindow); !ok {
		t.Fatal("other keys must have their own window")
	}

	clk.Advance(14 * time.Minute)
	if ok, _, _ := l.Allow(ctx, "203.0.113.7", testLimit, testWindow); !ok {
		t.Fatal("a new window must allow again")
	}
}

func TestRedisFixedWindow(t *testing.T) {
	// Arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewRedis(client, "rl:")
	ctx := context.Background()

	// Act & Assert
	for i := range testLimit {
		ok, _, err := l.Allow(ctx, "203.0.113.7", testLimit, testWindow)
		if err != nil || !ok {
			t.Fatalf("request %d: allowed=%v err=%v", i+1, ok, err)
		}
	}

	ok, retry, err := l.Allow(ctx, "203.0.113.7", testLimit, testWindow)
	if err != nil || ok {
		t.Fatalf("6th request must be limited: allowed=%v err=%v", ok, err)
	}
	if retry <= 0 || retry > testWindow {
		t.Fatalf("unexpected retryAfter %v", retry)
	}
	if !mr.Exists("rl:203.0.113.7") {
		t.Fatal("expected counter key with prefix")
	}

	mr.FastForward(testWindow)
	if ok, _, err := l.Allow(ctx, "203.0.113.7", testLimit, testWindow); err != nil || !ok {
		t.Fatalf("expired window must allow again: allowed=%v err=%v", ok, err)
	}
}

func TestRedisBackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if _, _, err := NewRedis(client, "").Allow(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatal("expected an error when redis is unreachable")
	}
}
