// Package logging builds the process-wide slog logger and carries
// request-scoped loggers through context so the application layer can log
// with the request's attributes without threading a logger parameter.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerKey struct{}

// NewServerLogger builds the JSON logger the API server process logs with.
func NewServerLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores the logger on a derived context. A nil context or nil
// logger leaves the input unchanged.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or nil when the
// context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
