package bootstrap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-signage"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	EnvLibraryLocation        = "LIBRARY_LOCATION"
	EnvDefaultResizeThreshold = "DEFAULT_RESIZE_THRESHOLD"
)

// Options captures configuration for signage CLI bootstraps.
type Options struct {
	Driver          string
	DSN             string
	LibraryLocation string
	ResizeThreshold int
	Verbose         bool
	LoggerProvider  interfaces.LoggerProvider
	SummaryObserver func(signage.ImageSummary)
	// Getenv resolves environment overrides. Nil disables them.
	Getenv func(string) string
}

// Config builds the module configuration for opts. Flags win over
// environment values, which win over defaults.
func Config(opts Options) (signage.Config, error) {
	cfg := signage.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Format = "console"
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	if opts.Getenv != nil {
		if location := strings.TrimSpace(opts.Getenv(EnvLibraryLocation)); location != "" {
			cfg.Library.Location = location
		}
		if raw := strings.TrimSpace(opts.Getenv(EnvDefaultResizeThreshold)); raw != "" {
			threshold, err := strconv.Atoi(raw)
			if err != nil {
				return cfg, fmt.Errorf("parse %s: %w", EnvDefaultResizeThreshold, err)
			}
			cfg.Library.ResizeThreshold = threshold
		}
	}

	if driver := strings.TrimSpace(opts.Driver); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if location := strings.TrimSpace(opts.LibraryLocation); location != "" {
		cfg.Library.Location = location
	}
	if opts.ResizeThreshold > 0 {
		cfg.Library.ResizeThreshold = opts.ResizeThreshold
	}
	return cfg, nil
}

// BuildModule constructs a signage module configured for CLI operations.
func BuildModule(opts Options) (*signage.Module, error) {
	cfg, err := Config(opts)
	if err != nil {
		return nil, err
	}

	var moduleOpts []signage.Option
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, signage.WithLoggerProvider(opts.LoggerProvider))
	}
	if opts.SummaryObserver != nil {
		moduleOpts = append(moduleOpts, signage.WithSummaryObserver(opts.SummaryObserver))
	}

	module, err := signage.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise signage module: %w", err)
	}
	return module, nil
}

// ParseUUID converts value into a UUID. Empty input is an error.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("layout id is required")
	}
	return uuid.Parse(trimmed)
}
