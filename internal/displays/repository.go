package displays

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository answers which displays must be told about changed media.
type Repository interface {
	// SchedulesReferencing returns schedules whose layout has a widget
	// referencing mediaID.
	SchedulesReferencing(ctx context.Context, mediaID string) ([]*Schedule, error)
	DisplayGroupsOf(ctx context.Context, scheduleID uuid.UUID) ([]*DisplayGroup, error)
	DisplaysOf(ctx context.Context, displayGroupID uuid.UUID) ([]*Display, error)
	// Notify flags a display to refresh its media inventory.
	Notify(ctx context.Context, displayID uuid.UUID) error
}

// Store extends Repository with the writes used to provision displays.
type Store interface {
	Repository
	CreateDisplay(ctx context.Context, display *Display) (*Display, error)
	GetDisplay(ctx context.Context, id uuid.UUID) (*Display, error)
	CreateDisplayGroup(ctx context.Context, group *DisplayGroup, displayIDs ...uuid.UUID) (*DisplayGroup, error)
	CreateSchedule(ctx context.Context, schedule *Schedule, displayGroupIDs ...uuid.UUID) (*Schedule, error)
}

// NotFoundError is returned when a display resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewScheduleRepository creates a go-repository-bun repository for schedules.
func NewScheduleRepository(db *bun.DB) repository.Repository[*Schedule] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Schedule]{
		NewRecord:          func() *Schedule { return &Schedule{} },
		GetID:              func(s *Schedule) uuid.UUID { return s.ID },
		SetID:              func(s *Schedule, id uuid.UUID) { s.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(s *Schedule) string { return s.ID.String() },
	})
}

// NewDisplayGroupRepository creates a go-repository-bun repository for display groups.
func NewDisplayGroupRepository(db *bun.DB) repository.Repository[*DisplayGroup] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DisplayGroup]{
		NewRecord:          func() *DisplayGroup { return &DisplayGroup{} },
		GetID:              func(g *DisplayGroup) uuid.UUID { return g.ID },
		SetID:              func(g *DisplayGroup, id uuid.UUID) { g.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(g *DisplayGroup) string { return g.Name },
	})
}

// NewDisplayRepository creates a go-repository-bun repository for displays.
func NewDisplayRepository(db *bun.DB) repository.Repository[*Display] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Display]{
		NewRecord:          func() *Display { return &Display{} },
		GetID:              func(d *Display) uuid.UUID { return d.ID },
		SetID:              func(d *Display, id uuid.UUID) { d.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(d *Display) string { return d.Name },
	})
}
