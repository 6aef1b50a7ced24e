package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/pkg/interfaces"
)

// TelemetryStatus classifies how a layout or image command finished.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// Log messages emitted per outcome.
const (
	msgCommandSucceeded    = "command.execute.success"
	msgCommandFailed       = "command.execute.failed"
	msgCommandContextError = "command.execute.context_error"
)

// TelemetryInfo is handed to a Telemetry callback once a command returns.
// Fields holds the command type, the operation and any message fields such
// as layout_id or max_failures.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry observes a finished command in place of the handler's own
// outcome logging.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs each outcome on logger with its duration in
// milliseconds. Failures carry the error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		elapsed := info.Duration.Milliseconds()
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info(msgCommandSucceeded, "duration_ms", elapsed)
		case TelemetryStatusContextError:
			entry.Error(msgCommandContextError, "duration_ms", elapsed, "error", info.Error)
		default:
			entry.Error(msgCommandFailed, "duration_ms", elapsed, "error", info.Error)
		}
	}
}
