package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single layout migration. The image command
// opts out with WithTimeout(0) since a pass walks the whole library.
const DefaultCommandTimeout = 30 * time.Second

// EnsureContext substitutes context.Background for a nil ctx. Cron jobs
// invoke handlers without a caller context.
func EnsureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// WithCommandTimeout derives a deadline from timeout. A non-positive
// timeout leaves ctx as is and returns a no-op cancel.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

// EnsureLogger falls back to logging.NoOp for a nil logger.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger != nil {
		return logger
	}
	return logging.NoOp()
}
