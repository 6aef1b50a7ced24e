package layoutscmd

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-signage/internal/commands"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
)

const migrateLayoutMessageType = "signage.layouts.migrate"

// ErrMigrationDisabled is returned when the migration gate is off.
var ErrMigrationDisabled = errors.New("layoutscmd: layout migration disabled")

// Migrator writes legacy layouts back in the normalized format.
type Migrator interface {
	Migrate(ctx context.Context, id uuid.UUID) (*layouts.Layout, error)
}

// MigrateLayoutCommand requests the write-back migration of one layout.
type MigrateLayoutCommand struct {
	LayoutID uuid.UUID `json:"layout_id"`
}

// Type implements command.Message.
func (MigrateLayoutCommand) Type() string { return migrateLayoutMessageType }

// Validate ensures the layout identifier is present.
func (m MigrateLayoutCommand) Validate() error {
	errs := validation.Errors{}
	if m.LayoutID == uuid.Nil {
		errs["layout_id"] = validation.NewError("signage.layouts.migrate.layout_id_required", "layout_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MigrateLayoutHandler migrates layouts via the layout service.
type MigrateLayoutHandler struct {
	inner *commands.Handler[MigrateLayoutCommand]
}

// NewMigrateLayoutHandler constructs a handler wired to the provided migrator.
func NewMigrateLayoutHandler(service Migrator, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[MigrateLayoutCommand]) *MigrateLayoutHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MigrateLayoutCommand) error {
		if !gates.migrationEnabled() {
			return ErrMigrationDisabled
		}
		_, err := service.Migrate(ctx, msg.LayoutID)
		return err
	}

	handlerOpts := []commands.HandlerOption[MigrateLayoutCommand]{
		commands.WithLogger[MigrateLayoutCommand](baseLogger),
		commands.WithOperation[MigrateLayoutCommand]("layouts.migrate"),
		commands.WithMessageFields(func(msg MigrateLayoutCommand) map[string]any {
			if msg.LayoutID == uuid.Nil {
				return nil
			}
			return map[string]any{"layout_id": msg.LayoutID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MigrateLayoutCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MigrateLayoutHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MigrateLayoutCommand].Execute.
func (h *MigrateLayoutHandler) Execute(ctx context.Context, msg MigrateLayoutCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RegisterLayoutCommands builds the layout command handlers and registers
// them with reg when reg is not nil.
func RegisterLayoutCommands(reg commands.CommandRegistry, service Migrator, provider interfaces.LoggerProvider, gates FeatureGates, opts ...commands.HandlerOption[MigrateLayoutCommand]) (*MigrateLayoutHandler, error) {
	if service == nil {
		return nil, errors.New("layout command registration: service is nil")
	}
	handler := NewMigrateLayoutHandler(service, commands.CommandLogger(provider, "layouts"), gates, opts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
