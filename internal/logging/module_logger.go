package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-signage/pkg/interfaces"
)

// CommandsModule prefixes the logger names of command handlers.
const CommandsModule = "signage.commands"

const (
	rootModule        = "signage"
	layoutsModule     = "signage.layouts"
	maintenanceModule = "signage.maintenance"
)

const (
	fieldMediaID  = "media_id"
	fieldStoredAs = "stored_as"
	fieldStage    = "stage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LayoutsLogger returns the logger namespace reserved for layout loading and migration.
func LayoutsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, layoutsModule)
}

// MaintenanceLogger returns the logger namespace reserved for background maintenance tasks.
func MaintenanceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, maintenanceModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, CommandsModule)
}

// WithMediaContext enriches the logger with the media item being processed.
// Empty values are ignored.
func WithMediaContext(logger interfaces.Logger, mediaID, storedAs, stage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(mediaID); trimmed != "" {
		fields[fieldMediaID] = trimmed
	}
	if trimmed := strings.TrimSpace(storedAs); trimmed != "" {
		fields[fieldStoredAs] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldStage] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
