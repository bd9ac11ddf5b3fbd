package ratelimit

import (
	"context"
	"sync"
	"time"
)

type fixedWindow struct {
	count int
	start time.Time
}

// Local is an in-memory fixed-window Limiter.
type Local struct {
	mu      sync.Mutex
	clock   clocker
	windows map[string]*fixedWindow
	cleanup time.Time
}

// NewLocal returns an in-memory limiter reading time from clock.
func NewLocal(clock clocker) *Local {
	return &Local{
		clock:   clock,
		windows: make(map[string]*fixedWindow),
		cleanup: clock.Now().Add(time.Minute),
	}
}

// Allow implements Limiter.
func (l *Local) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.cleanup) {
		for k, w := range l.windows {
			if now.Sub(w.start) >= window {
				delete(l.windows, k)
			}
		}
		l.cleanup = now.Add(window)
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= window {
		l.windows[key] = &fixedWindow{count: 1, start: now}
		return true, 0, nil
	}

	if w.count >= limit {
		return false, max(window-now.Sub(w.start), 0), nil
	}

	w.count++
	return true, 0, nil
}
