package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisContainerConditionalDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// Arrange
	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	now := time.Now().UTC().Truncate(time.Millisecond)
	s := NewRedis(client, "otp:", clock.NewManual(now), nil)

	// Act
	if err := s.Set(ctx, testRecord("a@example.com", "123456", "v1", now)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	stale, _ := s.DeleteIfVersion(ctx, "a@example.com", "v0")
	current, err := s.DeleteIfVersion(ctx, "a@example.com", "v1")

	// Assert
	if stale || !current || err != nil {
		t.Fatalf("stale=%v current=%v err=%v", stale, current, err)
	}
}
