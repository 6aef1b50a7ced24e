package modules

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-signage/pkg/interfaces"
)

// Registry resolves widget module types to their capabilities. It is safe
// for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

var _ interfaces.ModuleResolver = (*Registry)(nil)

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds or replaces a module. Later registrations win.
func (r *Registry) Register(module Module) {
	key := canonicalKey(module.Type)
	if key == "" {
		return
	}
	module.Type = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.modules == nil {
		r.modules = make(map[string]Module)
	}
	r.modules[key] = module
}

// Capabilities implements interfaces.ModuleResolver. Disabled modules are
// reported as unknown.
func (r *Registry) Capabilities(moduleType string) (interfaces.ModuleCapabilities, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, ok := r.modules[canonicalKey(moduleType)]
	if !ok || !module.Enabled {
		return interfaces.ModuleCapabilities{}, false
	}
	return module.Capabilities(), true
}

// ImageProcessingTypes lists the enabled module types whose media is
// resized by the maintenance task, sorted.
func (r *Registry) ImageProcessingTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for key, module := range r.modules {
		if module.Enabled && module.ImageProcessing {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// List returns every registered module sorted by type.
func (r *Registry) List() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.modules))
	for _, module := range r.modules {
		out = append(out, module)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
