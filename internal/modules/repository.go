package modules

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrModuleExists reports a module type that is already stored.
var ErrModuleExists = errors.New("modules: module type already exists")

// ModuleRepository exposes persistence operations for installed modules.
type ModuleRepository interface {
	Create(ctx context.Context, module *Module) (*Module, error)
	GetByType(ctx context.Context, moduleType string) (*Module, error)
	List(ctx context.Context) ([]*Module, error)
}

// NotFoundError is returned when a module cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q not found", e.Key)
}

// NewModuleRepository creates a go-repository-bun repository for modules.
func NewModuleRepository(db *bun.DB) repository.Repository[*Module] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Module]{
		NewRecord:          func() *Module { return &Module{} },
		GetID:              func(m *Module) uuid.UUID { return m.ID },
		SetID:              func(m *Module, id uuid.UUID) { m.ID = id },
		GetIdentifier:      func() string { return "module_type" },
		GetIdentifierValue: func(m *Module) string { return m.Type },
	})
}
