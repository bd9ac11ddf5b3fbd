// Package ratelimit counts requests per key in fixed windows.
//
// Local keeps counters in process memory; Redis shares them between replicas.
package ratelimit

import (
	"context"
	"time"
)

// Limiter records one hit for key and reports whether it fits in limit hits
// per window. When it does not, retryAfter is the time left in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

type clocker interface {
	Now() time.Time
}
