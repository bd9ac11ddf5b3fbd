package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnexpectedReply is returned when the counter script answers with an
// unexpected shape.
var ErrUnexpectedReply = errors.New("ratelimit: unexpected redis reply")

// The first hit of a window starts its expiry; later hits only count.
var fixedWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// Redis is a fixed-window Limiter shared through a Redis counter per key.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis-backed limiter storing counters under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &Redis{client: client, prefix: prefix}
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	raw, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := raw.([]any)
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("%w: %T", ErrUnexpectedReply, raw)
	}

	count, ok1 := values[0].(int64)
	pttl, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("%w: %v", ErrUnexpectedReply, values)
	}

	if count <= int64(limit) {
		return true, 0, nil
	}

	retry := time.Duration(pttl) * time.Millisecond
	if retry <= 0 {
		retry = window
	}
	return false, retry, nil
}
