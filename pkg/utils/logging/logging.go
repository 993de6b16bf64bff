package logging

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/m-mizutani/clog"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	handler := clog.New(
		clog.WithWriter(os.Stdout),
		clog.WithLevel(slog.LevelInfo),
	)
	defaultLogger.Store(slog.New(handler))
}

// Default returns the process-wide logger
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	defaultLogger.Store(logger)
}

type ctxLoggerKey struct{}

// With returns a new context that carries the given logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger from the context, falling back to Default
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
