package di

import (
	"context"
	"fmt"
	"time"

	command "github.com/goliatone/go-command"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-signage/internal/commands"
	layoutscmd "github.com/goliatone/go-signage/internal/commands/layouts"
	mediacmd "github.com/goliatone/go-signage/internal/commands/media"
	"github.com/goliatone/go-signage/internal/displays"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/goliatone/go-signage/internal/library"
	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/internal/logging/gologger"
	"github.com/goliatone/go-signage/internal/maintenance"
	"github.com/goliatone/go-signage/internal/media"
	"github.com/goliatone/go-signage/internal/modules"
	"github.com/goliatone/go-signage/internal/runtimeconfig"
	"github.com/goliatone/go-signage/internal/storage"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Container wires module dependencies. Repositories default to in-memory
// implementations until a bun database is attached or opened from config.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	ownsDB        bool
	openStorage   bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider    interfaces.LoggerProvider
	metricsRegisterer prometheus.Registerer
	commandRegistry   commands.CommandRegistry
	cronRegistrar     commands.CronRegistrar
	summaryObserver   func(maintenance.Summary)

	registry       *modules.Registry
	moduleRepo     modules.ModuleRepository
	layoutRepo     layouts.LayoutRepository
	resolutionRepo layouts.ResolutionRepository
	mediaRepo      media.Repository
	displayStore   displays.Store
	fileStore      interfaces.LibraryFileStore

	layoutSvc layouts.Service
	imageTask *maintenance.ImageProcessingTask

	migrateHandler       *layoutscmd.MigrateLayoutHandler
	processImagesHandler *mediacmd.ProcessImagesHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB attaches an existing database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMemoryStorage keeps the in-memory repositories even when a DSN is configured.
func WithMemoryStorage() Option {
	return func(c *Container) {
		c.openStorage = false
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetricsRegisterer sets the registry used when the metrics feature is on.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.metricsRegisterer = reg
	}
}

// WithFileStore overrides the filesystem library store.
func WithFileStore(store interfaces.LibraryFileStore) Option {
	return func(c *Container) {
		c.fileStore = store
	}
}

// WithDisplayStore overrides the display repository.
func WithDisplayStore(store displays.Store) Option {
	return func(c *Container) {
		c.displayStore = store
	}
}

// WithCommandRegistry registers command handlers with reg.
func WithCommandRegistry(reg commands.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the image processing command when
// Config.Commands.AutoRegisterCron is set.
func WithCronRegistrar(reg commands.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
	}
}

// WithSummaryObserver receives the summary of every image processing command run.
func WithSummaryObserver(fn func(maintenance.Summary)) Option {
	return func(c *Container) {
		c.summaryObserver = fn
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:         cfg,
		openStorage:    true,
		cacheTTL:       cacheTTL,
		moduleRepo:     modules.NewMemoryModuleRepository(),
		layoutRepo:     layouts.NewMemoryLayoutRepository(),
		resolutionRepo: layouts.NewMemoryResolutionRepository(),
		mediaRepo:      media.NewMemoryRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLoggerProvider,
		c.configureStorage,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureModules,
		c.configureServices,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLoggerProvider(context.Context) error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: configure logger: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil && c.openStorage {
		db, err := storage.Open(c.Config.Storage.Driver, c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("di: open storage: %w", err)
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB != nil && c.Config.Storage.AutoMigrate {
		if err := storage.Apply(ctx, c.bunDB); err != nil {
			return fmt.Errorf("di: migrate storage: %w", err)
		}
	}
	return nil
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories(context.Context) error {
	if c.bunDB != nil {
		c.moduleRepo = modules.NewBunModuleRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.resolutionRepo = layouts.NewBunResolutionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.layoutRepo = layouts.NewBunLayoutRepository(c.bunDB)
		c.mediaRepo = media.NewBunRepository(c.bunDB)
		if c.displayStore == nil {
			c.displayStore = displays.NewBunRepository(c.bunDB)
		}
	}
	if c.displayStore == nil {
		c.displayStore = displays.NewMemoryRepository()
	}
	return nil
}

func (c *Container) configureModules(ctx context.Context) error {
	if err := modules.EnsureBuiltins(ctx, c.moduleRepo); err != nil {
		return fmt.Errorf("di: seed modules: %w", err)
	}
	c.registry = modules.NewDefaultRegistry()
	if err := modules.Sync(ctx, c.registry, c.moduleRepo); err != nil {
		return fmt.Errorf("di: sync modules: %w", err)
	}
	return nil
}

func (c *Container) configureServices(context.Context) error {
	c.layoutSvc = layouts.NewService(c.layoutRepo, c.registry,
		layouts.WithLogger(logging.LayoutsLogger(c.loggerProvider)),
		layouts.WithSchemaVersion(c.Config.Layouts.SchemaVersion),
		layouts.WithResolutionRepository(c.resolutionRepo),
	)

	if !c.Config.Features.ImageProcessing {
		return nil
	}
	if c.fileStore == nil {
		store, err := library.NewFileStore(c.Config.Library.Location)
		if err != nil {
			return fmt.Errorf("di: configure library: %w", err)
		}
		c.fileStore = store
	}

	taskOpts := []maintenance.Option{
		maintenance.WithLogger(logging.MaintenanceLogger(c.loggerProvider)),
		maintenance.WithResizeThreshold(c.Config.Library.ResizeThreshold),
		maintenance.WithDisplayRepository(c.displayStore),
	}
	if c.Config.Features.Metrics {
		metrics, err := maintenance.NewMetrics(c.metricsRegisterer)
		if err != nil {
			return fmt.Errorf("di: register metrics: %w", err)
		}
		taskOpts = append(taskOpts, maintenance.WithMetrics(metrics))
	}
	c.imageTask = maintenance.NewImageProcessingTask(c.mediaRepo, c.registry, c.fileStore, taskOpts...)
	return nil
}

func (c *Container) configureCommands(context.Context) error {
	migrate, err := layoutscmd.RegisterLayoutCommands(c.commandRegistry, c.layoutSvc, c.loggerProvider, layoutscmd.FeatureGates{})
	if err != nil {
		return fmt.Errorf("di: register layout commands: %w", err)
	}
	c.migrateHandler = migrate

	if c.imageTask == nil {
		return nil
	}
	gates := mediacmd.FeatureGates{
		ImageProcessingEnabled: func() bool { return c.Config.Features.ImageProcessing },
	}
	process, err := mediacmd.RegisterProcessImagesCommand(c.commandRegistry, c.imageTask, c.loggerProvider, gates, c.summaryObserver)
	if err != nil {
		return fmt.Errorf("di: register media commands: %w", err)
	}
	c.processImagesHandler = process

	if c.Config.Commands.AutoRegisterCron {
		cfg := command.HandlerConfig{Expression: c.Config.Commands.ProcessImagesCron}
		msg := mediacmd.ProcessImagesCommand{MaxFailures: c.Config.Commands.MaxImageFailures}
		if err := mediacmd.RegisterProcessImagesCron(c.cronRegistrar, process, cfg, msg); err != nil {
			return fmt.Errorf("di: register image processing cron: %w", err)
		}
	}
	return nil
}

// Close releases the database opened from config.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// DB returns the attached database, or nil in memory mode.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// LoggerProvider returns the configured logger provider, or nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// ModuleRegistry returns the synced module capability registry.
func (c *Container) ModuleRegistry() *modules.Registry {
	return c.registry
}

func (c *Container) ModuleRepository() modules.ModuleRepository {
	return c.moduleRepo
}

func (c *Container) LayoutRepository() layouts.LayoutRepository {
	return c.layoutRepo
}

func (c *Container) ResolutionRepository() layouts.ResolutionRepository {
	return c.resolutionRepo
}

func (c *Container) MediaRepository() media.Repository {
	return c.mediaRepo
}

func (c *Container) DisplayStore() displays.Store {
	return c.displayStore
}

// LayoutService returns the layout loading, creation, and migration service.
func (c *Container) LayoutService() layouts.Service {
	return c.layoutSvc
}

// XLFParser returns a parser bound to the module registry.
func (c *Container) XLFParser() *layouts.XLFParser {
	return layouts.NewXLFParser(c.registry)
}

// ImageTask returns the image maintenance task, or nil when image processing is disabled.
func (c *Container) ImageTask() *maintenance.ImageProcessingTask {
	return c.imageTask
}

func (c *Container) MigrateLayoutHandler() *layoutscmd.MigrateLayoutHandler {
	return c.migrateHandler
}

// ProcessImagesHandler returns nil when image processing is disabled.
func (c *Container) ProcessImagesHandler() *mediacmd.ProcessImagesHandler {
	return c.processImagesHandler
}
