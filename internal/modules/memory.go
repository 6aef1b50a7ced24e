package modules

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryModuleRepository constructs an in-memory module repository.
func NewMemoryModuleRepository() ModuleRepository {
	return &memoryModuleRepository{
		byType: make(map[string]*Module),
	}
}

type memoryModuleRepository struct {
	mu     sync.RWMutex
	byType map[string]*Module
}

func (m *memoryModuleRepository) Create(_ context.Context, module *Module) (*Module, error) {
	if module == nil {
		return nil, fmt.Errorf("modules: module is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *module
	cloned.Type = canonicalKey(cloned.Type)
	if _, exists := m.byType[cloned.Type]; exists {
		return nil, ErrModuleExists
	}
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byType[cloned.Type] = &cloned
	out := cloned
	return &out, nil
}

func (m *memoryModuleRepository) GetByType(_ context.Context, moduleType string) (*Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := canonicalKey(moduleType)
	record, ok := m.byType[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	out := *record
	return &out, nil
}

func (m *memoryModuleRepository) List(_ context.Context) ([]*Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Module, 0, len(m.byType))
	for _, record := range m.byType {
		cloned := *record
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}
