package media

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryRepository constructs an in-memory media repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*Media),
	}
}

type memoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*Media
	order []uuid.UUID
}

func (m *memoryRepository) Create(_ context.Context, item *Media) (*Media, error) {
	if item == nil {
		return nil, fmt.Errorf("media: item is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *item
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	if _, exists := m.byID[cloned.ID]; !exists {
		m.order = append(m.order, cloned.ID)
	}
	m.byID[cloned.ID] = &cloned
	out := cloned
	return &out, nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	out := *record
	return &out, nil
}

func (m *memoryRepository) ListUnreleased(_ context.Context, types []string) ([]*Media, error) {
	normalized := normalizeTypes(types)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Media, 0)
	for _, id := range m.order {
		record := m.byID[id]
		if record.Released || !slices.Contains(normalized, strings.ToLower(record.Type)) {
			continue
		}
		cloned := *record
		out = append(out, &cloned)
	}
	return out, nil
}

func (m *memoryRepository) Release(_ context.Context, id uuid.UUID, hash string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Key: id.String()}
	}
	record.Released = true
	record.MD5 = hash
	record.FileSize = size
	return nil
}
