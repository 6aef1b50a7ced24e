package displays

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Store. Layout media references are
// registered with IndexLayout.
type MemoryRepository struct {
	mu          sync.RWMutex
	schedules   map[uuid.UUID]*Schedule
	groups      map[uuid.UUID]*DisplayGroup
	displays    map[uuid.UUID]*Display
	groupLinks  map[uuid.UUID][]uuid.UUID
	members     map[uuid.UUID][]uuid.UUID
	layoutMedia map[uuid.UUID][]string
	notified    []uuid.UUID
	now         func() time.Time
}

var _ Store = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty in-memory display store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		schedules:   make(map[uuid.UUID]*Schedule),
		groups:      make(map[uuid.UUID]*DisplayGroup),
		displays:    make(map[uuid.UUID]*Display),
		groupLinks:  make(map[uuid.UUID][]uuid.UUID),
		members:     make(map[uuid.UUID][]uuid.UUID),
		layoutMedia: make(map[uuid.UUID][]string),
		now:         time.Now,
	}
}

// IndexLayout records the media referenced by the widgets of layout, or by
// the media elements of its XLF document while it is still legacy.
func (m *MemoryRepository) IndexLayout(layout *layouts.Layout) {
	if layout == nil {
		return
	}
	refs := layouts.LegacyMediaIDs(layout.LegacyXML)
	for _, region := range layout.Regions {
		for _, playlist := range region.Playlists {
			for _, widget := range playlist.Widgets {
				refs = append(refs, widget.MediaIDs...)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.layoutMedia[layout.ID] = refs
}

// Notifications returns every Notify call in order.
func (m *MemoryRepository) Notifications() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uuid.UUID(nil), m.notified...)
}

func (m *MemoryRepository) SchedulesReferencing(_ context.Context, mediaID string) ([]*Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Schedule, 0)
	for _, schedule := range m.schedules {
		if slices.Contains(m.layoutMedia[schedule.LayoutID], mediaID) {
			cloned := *schedule
			out = append(out, &cloned)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *MemoryRepository) DisplayGroupsOf(_ context.Context, scheduleID uuid.UUID) ([]*DisplayGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*DisplayGroup, 0)
	for _, id := range m.groupLinks[scheduleID] {
		if group, ok := m.groups[id]; ok {
			cloned := *group
			out = append(out, &cloned)
		}
	}
	return out, nil
}

func (m *MemoryRepository) DisplaysOf(_ context.Context, displayGroupID uuid.UUID) ([]*Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Display, 0)
	for _, id := range m.members[displayGroupID] {
		if display, ok := m.displays[id]; ok {
			cloned := *display
			out = append(out, &cloned)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Notify(_ context.Context, displayID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	display, ok := m.displays[displayID]
	if !ok {
		return &NotFoundError{Resource: "display", Key: displayID.String()}
	}
	now := m.now()
	display.MediaInventoryStatus = MediaInventoryPending
	display.NotifiedAt = &now
	m.notified = append(m.notified, displayID)
	return nil
}

func (m *MemoryRepository) CreateDisplay(_ context.Context, display *Display) (*Display, error) {
	if display == nil {
		return nil, fmt.Errorf("displays: display is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *display
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.displays[cloned.ID] = &cloned
	out := cloned
	return &out, nil
}

func (m *MemoryRepository) GetDisplay(_ context.Context, id uuid.UUID) (*Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	display, ok := m.displays[id]
	if !ok {
		return nil, &NotFoundError{Resource: "display", Key: id.String()}
	}
	out := *display
	return &out, nil
}

func (m *MemoryRepository) CreateDisplayGroup(_ context.Context, group *DisplayGroup, displayIDs ...uuid.UUID) (*DisplayGroup, error) {
	if group == nil {
		return nil, fmt.Errorf("displays: display group is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *group
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.groups[cloned.ID] = &cloned
	m.members[cloned.ID] = append([]uuid.UUID(nil), displayIDs...)
	out := cloned
	return &out, nil
}

func (m *MemoryRepository) CreateSchedule(_ context.Context, schedule *Schedule, displayGroupIDs ...uuid.UUID) (*Schedule, error) {
	if schedule == nil {
		return nil, fmt.Errorf("displays: schedule is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *schedule
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.schedules[cloned.ID] = &cloned
	m.groupLinks[cloned.ID] = append([]uuid.UUID(nil), displayGroupIDs...)
	out := cloned
	return &out, nil
}
