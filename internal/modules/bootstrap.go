package modules

import (
	"context"
	"errors"

	"github.com/goliatone/go-signage/internal/identity"
)

// builtin describes a module shipped with the CMS.
type builtin struct {
	kind            string
	name            string
	regionSpecific  bool
	imageProcessing bool
	duration        int
}

var builtins = []builtin{
	{kind: "image", name: "Image", imageProcessing: true, duration: 10},
	{kind: "video", name: "Video"},
	{kind: "flash", name: "Flash", duration: 10},
	{kind: "powerpoint", name: "PowerPoint", duration: 10},
	{kind: "pdf", name: "PDF", duration: 60},
	{kind: "genericfile", name: "Generic File", duration: 10},
	{kind: "htmlpackage", name: "HTML Package", duration: 60},
	{kind: "font", name: "Font"},
	{kind: "text", name: "Text", regionSpecific: true, duration: 10},
	{kind: "ticker", name: "Ticker", regionSpecific: true, duration: 10},
	{kind: "webpage", name: "Webpage", regionSpecific: true, duration: 60},
	{kind: "embedded", name: "Embedded", regionSpecific: true, duration: 60},
	{kind: "datasetview", name: "DataSet View", regionSpecific: true, duration: 60},
	{kind: "clock", name: "Clock", regionSpecific: true, duration: 10},
	{kind: "counter", name: "Counter", regionSpecific: true, duration: 10},
	{kind: "shellcommand", name: "Shell Command", regionSpecific: true, duration: 10},
	{kind: "localvideo", name: "Local Video", regionSpecific: true, duration: 60},
	{kind: "forecastio", name: "Weather", regionSpecific: true, duration: 60},
}

// Builtins returns the modules shipped with the CMS. Identifiers are
// deterministic so seeding is idempotent across installs.
func Builtins() []Module {
	out := make([]Module, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, Module{
			ID:              identity.ModuleUUID(b.kind),
			Type:            b.kind,
			Name:            b.name,
			RegionSpecific:  b.regionSpecific,
			ImageProcessing: b.imageProcessing,
			DefaultDuration: b.duration,
			Enabled:         true,
		})
	}
	return out
}

// NewDefaultRegistry returns a registry holding the built-in modules.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, module := range Builtins() {
		registry.Register(module)
	}
	return registry
}

// Sync registers every persisted module on top of what the registry already
// holds, so installed rows override built-ins.
func Sync(ctx context.Context, registry *Registry, repo ModuleRepository) error {
	if registry == nil || repo == nil {
		return nil
	}
	records, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record != nil {
			registry.Register(*record)
		}
	}
	return nil
}

// EnsureBuiltins idempotently stores the built-in modules.
func EnsureBuiltins(ctx context.Context, repo ModuleRepository) error {
	if repo == nil {
		return nil
	}
	for _, module := range Builtins() {
		record := module
		if _, err := repo.Create(ctx, &record); err != nil {
			if errors.Is(err, ErrModuleExists) {
				continue
			}
			return err
		}
	}
	return nil
}
