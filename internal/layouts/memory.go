package layouts

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryLayoutRepository constructs an in-memory layout repository.
func NewMemoryLayoutRepository() LayoutRepository {
	return &memoryLayoutRepository{
		byID: make(map[uuid.UUID]*Layout),
	}
}

type memoryLayoutRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Layout
}

func (m *memoryLayoutRepository) GetByID(_ context.Context, id uuid.UUID) (*Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: id.String()}
	}
	row := copyLayout(record, false)
	row.Regions = nil
	return row, nil
}

func (m *memoryLayoutRepository) LoadRegions(_ context.Context, layoutID uuid.UUID) ([]*Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[layoutID]
	if !ok {
		return []*Region{}, nil
	}
	return copyLayout(record, false).Regions, nil
}

func (m *memoryLayoutRepository) Create(_ context.Context, layout *Layout) (*Layout, error) {
	if layout == nil || layout.ID == uuid.Nil {
		return nil, ErrLayoutIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[layout.ID]; exists {
		return nil, ErrLayoutExists
	}
	m.byID[layout.ID] = copyLayout(layout, false)
	return copyLayout(layout, false), nil
}

func (m *memoryLayoutRepository) ReplaceGraph(_ context.Context, layout *Layout) (*Layout, error) {
	if layout == nil || layout.ID == uuid.Nil {
		return nil, ErrLayoutIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[layout.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: layout.ID.String()}
	}
	stored := copyLayout(layout, false)
	stored.CreatedAt = existing.CreatedAt
	m.byID[layout.ID] = stored
	return copyLayout(stored, false), nil
}

// NewMemoryResolutionRepository constructs an in-memory resolution repository.
func NewMemoryResolutionRepository() ResolutionRepository {
	return &memoryResolutionRepository{
		byID: make(map[uuid.UUID]*Resolution),
	}
}

type memoryResolutionRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Resolution
}

func (m *memoryResolutionRepository) Create(_ context.Context, resolution *Resolution) (*Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *resolution
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = &cloned
	out := cloned
	return &out, nil
}

func (m *memoryResolutionRepository) GetByID(_ context.Context, id uuid.UUID) (*Resolution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "resolution", Key: id.String()}
	}
	out := *record
	return &out, nil
}

func (m *memoryResolutionRepository) List(_ context.Context) ([]*Resolution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Resolution, 0, len(m.byID))
	for _, record := range m.byID {
		out := *record
		records = append(records, &out)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
