package signage

import (
	"context"

	"github.com/goliatone/go-signage/internal/commands"
	layoutscmd "github.com/goliatone/go-signage/internal/commands/layouts"
	mediacmd "github.com/goliatone/go-signage/internal/commands/media"
	"github.com/goliatone/go-signage/internal/di"
	"github.com/goliatone/go-signage/internal/displays"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/goliatone/go-signage/internal/maintenance"
	"github.com/goliatone/go-signage/internal/media"
	"github.com/goliatone/go-signage/internal/modules"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
)

// LayoutService exports the layout service contract for consumers of the signage package.
type LayoutService = layouts.Service

type (
	Layout       = layouts.Layout
	Region       = layouts.Region
	Playlist     = layouts.Playlist
	Widget       = layouts.Widget
	WidgetOption = layouts.WidgetOption
	Resolution   = layouts.Resolution

	CreateFromResolutionRequest = layouts.CreateFromResolutionRequest
	CreateFromTemplateRequest   = layouts.CreateFromTemplateRequest
)

// Media exports the library media record.
type Media = media.Media

type (
	Display      = displays.Display
	DisplayGroup = displays.DisplayGroup
	Schedule     = displays.Schedule
	DisplayStore = displays.Store
)

// ModuleCapabilities exports the per-module-type capability flags.
type ModuleCapabilities = interfaces.ModuleCapabilities

type (
	ImageSummary     = maintenance.Summary
	ImageItemFailure = maintenance.ItemFailure
)

type (
	MigrateLayoutCommand = layoutscmd.MigrateLayoutCommand
	ProcessImagesCommand = mediacmd.ProcessImagesCommand
	CommandRegistry      = commands.CommandRegistry
	CronRegistrar        = commands.CronRegistrar
)

// Option customises the container built by New.
type Option = di.Option

var (
	WithBunDB             = di.WithBunDB
	WithMemoryStorage     = di.WithMemoryStorage
	WithCache             = di.WithCache
	WithLoggerProvider    = di.WithLoggerProvider
	WithMetricsRegisterer = di.WithMetricsRegisterer
	WithFileStore         = di.WithFileStore
	WithDisplayStore      = di.WithDisplayStore
	WithCommandRegistry   = di.WithCommandRegistry
	WithCronRegistrar     = di.WithCronRegistrar
	WithSummaryObserver   = di.WithSummaryObserver
)

// Module represents the top level signage runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a signage module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases storage opened by New.
func (m *Module) Close() error {
	return m.container.Close()
}

// Layouts returns the configured layout service.
func (m *Module) Layouts() LayoutService {
	return m.container.LayoutService()
}

// Media returns the library media repository.
func (m *Module) Media() media.Repository {
	return m.container.MediaRepository()
}

// Displays returns the display store used for media change notifications.
func (m *Module) Displays() DisplayStore {
	return m.container.DisplayStore()
}

// Capabilities reports the capability flags of moduleType.
func (m *Module) Capabilities(moduleType string) (ModuleCapabilities, bool) {
	return m.container.ModuleRegistry().Capabilities(moduleType)
}

// Modules lists installed module definitions.
func (m *Module) Modules() []modules.Module {
	return m.container.ModuleRegistry().List()
}

// LoadLayout returns the normalized graph of layout id, migrating legacy
// documents on read.
func (m *Module) LoadLayout(ctx context.Context, id uuid.UUID) (*Layout, error) {
	return m.container.LayoutService().LoadByID(ctx, id)
}

// ParseXLF converts an XLF document into an unsaved layout graph.
func (m *Module) ParseXLF(document []byte) (*Layout, error) {
	return m.container.XLFParser().Parse(document)
}

// EncodeXLF renders layout as an XLF document.
func (m *Module) EncodeXLF(layout *Layout) ([]byte, error) {
	return layouts.EncodeXLF(layout)
}

// MigrateLayout runs the migrate command for id.
func (m *Module) MigrateLayout(ctx context.Context, id uuid.UUID) error {
	return m.container.MigrateLayoutHandler().Execute(ctx, MigrateLayoutCommand{LayoutID: id})
}

// ProcessImages runs one image maintenance pass. It returns
// ErrImageProcessingDisabled when the feature is off.
func (m *Module) ProcessImages(ctx context.Context, msg ProcessImagesCommand) error {
	handler := m.container.ProcessImagesHandler()
	if handler == nil {
		return ErrImageProcessingDisabled
	}
	return handler.Execute(ctx, msg)
}

// ImageProcessingEnabled reports whether the image maintenance task is wired.
func (m *Module) ImageProcessingEnabled() bool {
	return m.container.ImageTask() != nil
}
