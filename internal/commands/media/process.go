package mediacmd

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-signage/internal/commands"
	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/internal/maintenance"
	"github.com/goliatone/go-signage/pkg/interfaces"
)

const processImagesMessageType = "signage.media.images.process"

var (
	// ErrImageProcessingDisabled is returned when the feature gate is off.
	ErrImageProcessingDisabled = errors.New("mediacmd: image processing disabled")
	// ErrTooManyFailures is returned when a run skipped more items than allowed.
	ErrTooManyFailures = errors.New("mediacmd: image processing failure limit exceeded")
)

// TaskRunner runs one image maintenance pass.
type TaskRunner interface {
	Run(ctx context.Context) (maintenance.Summary, error)
}

// ProcessImagesCommand triggers the image maintenance task.
type ProcessImagesCommand struct {
	// MaxFailures fails the command when more items were skipped. Zero
	// tolerates any number of skipped items.
	MaxFailures int `json:"max_failures,omitempty"`
}

// Type implements command.Message.
func (ProcessImagesCommand) Type() string { return processImagesMessageType }

// Validate implements command.Message.
func (m ProcessImagesCommand) Validate() error {
	errs := validation.Errors{}
	if m.MaxFailures < 0 {
		errs["max_failures"] = validation.NewError("signage.media.images.process.max_failures_invalid", "max_failures cannot be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ProcessImagesHandler runs the maintenance task through the shared command handler foundation.
type ProcessImagesHandler struct {
	inner *commands.Handler[ProcessImagesCommand]
}

// NewProcessImagesHandler constructs a handler wired to task. observe, when
// not nil, receives the summary of every completed run.
func NewProcessImagesHandler(task TaskRunner, logger interfaces.Logger, gates FeatureGates, observe func(maintenance.Summary), opts ...commands.HandlerOption[ProcessImagesCommand]) *ProcessImagesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ProcessImagesCommand) error {
		if !gates.imageProcessingEnabled() {
			return ErrImageProcessingDisabled
		}
		if task == nil {
			return maintenance.ErrMediaRepositoryRequired
		}
		summary, err := task.Run(ctx)
		if observe != nil {
			observe(summary)
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"released": summary.Released,
			"notified": summary.Notified,
			"failures": len(summary.Failures),
		}).Info("media.command.process_images.summary")

		if msg.MaxFailures > 0 && len(summary.Failures) > msg.MaxFailures {
			return fmt.Errorf("%w: %d skipped, limit %d", ErrTooManyFailures, len(summary.Failures), msg.MaxFailures)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ProcessImagesCommand]{
		commands.WithLogger[ProcessImagesCommand](baseLogger),
		commands.WithOperation[ProcessImagesCommand]("media.process_images"),
		commands.WithTimeout[ProcessImagesCommand](0),
		commands.WithMessageFields(func(msg ProcessImagesCommand) map[string]any {
			if msg.MaxFailures == 0 {
				return nil
			}
			return map[string]any{"max_failures": msg.MaxFailures}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ProcessImagesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ProcessImagesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ProcessImagesCommand].Execute.
func (h *ProcessImagesHandler) Execute(ctx context.Context, msg ProcessImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RegisterProcessImagesCommand builds the handler and registers it with reg
// when reg is not nil.
func RegisterProcessImagesCommand(reg commands.CommandRegistry, task TaskRunner, provider interfaces.LoggerProvider, gates FeatureGates, observe func(maintenance.Summary), opts ...commands.HandlerOption[ProcessImagesCommand]) (*ProcessImagesHandler, error) {
	if task == nil {
		return nil, errors.New("media command registration: task is nil")
	}
	handler := NewProcessImagesHandler(task, commands.CommandLogger(provider, "media"), gates, observe, opts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}

// RegisterProcessImagesCron schedules handler on reg using cfg. The handler
// runs with a background context.
func RegisterProcessImagesCron(reg commands.CronRegistrar, handler *ProcessImagesHandler, cfg command.HandlerConfig, msg ProcessImagesCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
