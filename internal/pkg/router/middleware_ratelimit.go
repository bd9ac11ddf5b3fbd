package router

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/ratelimit"
)

// RateLimitConfig configures a per-client fixed-window limit.
//
// Routes sharing a Scope share one counter per client IP.
type RateLimitConfig struct {
	Scope    string
	Limit    int
	Window   time.Duration
	FailOpen bool
	Message  string
}

// RateLimit rejects a client's requests past cfg.Limit within cfg.Window with
// 429 and a Retry-After header, before the handler runs.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig) Middleware {
	if cfg.Message == "" {
		cfg.Message = "Too many requests, please try again later."
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Scope + ":" + r.RemoteAddr

			allowed, retryAfter, err := limiter.Allow(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				if cfg.FailOpen {
					slog.WarnContext(r.Context(), "rate limiter unavailable, allowing request", "scope", cfg.Scope, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				slog.ErrorContext(r.Context(), "rate limiter unavailable, rejecting request", "scope", cfg.Scope, "error", err)
				retryAfter = cfg.Window
				allowed = false
			}

			if !allowed {
				slog.InfoContext(r.Context(), "request rate limited", "scope", cfg.Scope, "client_ip", r.RemoteAddr)
				w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
				writeError(w, cfg.Message, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(max(int(math.Ceil(d.Seconds())), 1))
}
