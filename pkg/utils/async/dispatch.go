package async

import (
	"context"

	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler gets a fresh background context (the request context may be
// cancelled before the handler finishes) with the caller's logger attached.
// Errors and panics are logged, never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", err)
		}
	}()
}
