package commands

import (
	"strings"

	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/pkg/interfaces"
)

const (
	// commandModuleRoot names handlers registered without a module.
	commandModuleRoot = "core"
	fieldComponent    = "component"
	fieldModule       = "command_module"
)

// CommandLogger scopes provider to signage.commands.<module>, where module
// is "layouts" for migration and "media" for image processing.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = commandModuleRoot
	}
	return logging.WithFields(logging.ModuleLogger(provider, logging.CommandsModule+"."+name), map[string]any{
		fieldComponent: "command",
		fieldModule:    name,
	})
}
