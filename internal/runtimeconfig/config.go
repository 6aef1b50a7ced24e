package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrStorageDriverUnknown = errors.New("signage config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("signage config: storage dsn is required")
var ErrCacheTTLInvalid = errors.New("signage config: cache ttl must be positive when cache is enabled")
var ErrLibraryLocationRequired = errors.New("signage config: library location is required when image processing is enabled")
var ErrResizeThresholdInvalid = errors.New("signage config: resize threshold must be greater than zero")
var ErrSchemaVersionInvalid = errors.New("signage config: layout schema version must be greater than zero")
var ErrLoggingProviderRequired = errors.New("signage config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("signage config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("signage config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("signage config: logging format is invalid")

// ErrCommandsCronRequiresImageProcessing keeps the cron wiring behind the image processing flag.
var ErrCommandsCronRequiresImageProcessing = errors.New("signage config: image processing cron requires the image processing feature")

// ErrCommandsCronExpressionRequired is returned when cron wiring has no schedule.
var ErrCommandsCronExpressionRequired = errors.New("signage config: image processing cron expression is required")

// Config aggregates feature flags and adapter bindings for the signage module.
type Config struct {
	Storage  StorageConfig
	Cache    CacheConfig
	Library  LibraryConfig
	Layouts  LayoutsConfig
	Features Features
	Commands CommandsConfig
	Logging  LoggingConfig
}

// StorageConfig selects the SQL backend.
type StorageConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string
	DSN    string
	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LibraryConfig locates stored media files.
type LibraryConfig struct {
	Location        string
	ResizeThreshold int
}

// LayoutsConfig controls layout loading.
type LayoutsConfig struct {
	// SchemaVersion is written to every layout loaded or saved.
	SchemaVersion int
}

// Features toggles module functionality.
type Features struct {
	Logger          bool
	ImageProcessing bool
	Metrics         bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	AutoRegisterCron  bool
	ProcessImagesCron string
	// MaxImageFailures fails a scheduled image run once it skips more items.
	MaxImageFailures int
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults suited to a local sqlite deployment.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:      "sqlite3",
			DSN:         "file:signage.db?cache=shared&_foreign_keys=1",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Library: LibraryConfig{
			Location:        "library",
			ResizeThreshold: 1920,
		},
		Layouts: LayoutsConfig{
			SchemaVersion: 3,
		},
		Features: Features{
			ImageProcessing: true,
		},
		Commands: CommandsConfig{
			ProcessImagesCron: "@every 1h",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := NormalizeDriver(cfg.Storage.Driver)
	if !isSupportedDriver(driver) {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Library.ResizeThreshold <= 0 {
		return ErrResizeThresholdInvalid
	}
	if cfg.Features.ImageProcessing && strings.TrimSpace(cfg.Library.Location) == "" {
		return ErrLibraryLocationRequired
	}
	if cfg.Layouts.SchemaVersion <= 0 {
		return ErrSchemaVersionInvalid
	}
	if cfg.Commands.AutoRegisterCron {
		if !cfg.Features.ImageProcessing {
			return ErrCommandsCronRequiresImageProcessing
		}
		if strings.TrimSpace(cfg.Commands.ProcessImagesCron) == "" {
			return ErrCommandsCronExpressionRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// NormalizeDriver maps driver aliases onto "sqlite3" or "postgres".
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func isSupportedDriver(driver string) bool {
	return driver == "sqlite3" || driver == "postgres"
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
