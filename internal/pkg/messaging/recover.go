package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/shandysiswandi/otpgate/internal/pkg/stacktrace"
)

func callHandlerWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
		} else {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
	}()

	return fn()
}

// responder tracks whether a message was already acked or nacked.
type responder struct {
	done atomic.Bool
}

func (r *responder) first() bool { return !r.done.Swap(true) }

func (r *responder) responded() bool { return r.done.Load() }

// dispatch runs handler on msg and applies auto-ack when the handler did not
// respond itself.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message, r *responder, autoAck bool) {
	herr := callHandlerWithRecover(ctx, driver, func() error { return handler(ctx, msg) })

	if !autoAck || r.responded() {
		return
	}

	var err error
	if herr == nil {
		err = msg.Ack(ctx)
	} else {
		err = msg.Nack(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to settle message", "driver", driver, "source", msg.Source(), "error", err)
	}
}
