// Package xcontext carries request-scoped collaborators through a plain
// context.Context so domain code never depends on the transport layer.
package xcontext

import (
	"context"

	"github.com/rondomundi/backend/pkg/logger"
)

type loggerKey struct{}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the logger stored in ctx, or a default one so callers never
// need a nil check.
func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}
