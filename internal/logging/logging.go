// Package logging carries request scoped loggers through context values so
// services can enrich log records without threading a logger parameter.
package logging

import (
	"context"
	"log/slog"
)

// loggerKey is unexported so only this package can attach the logger value.
type loggerKey struct{}

// ContextWithLogger attaches logger to the context. Nil inputs leave the
// context unchanged.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when none was
// attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
