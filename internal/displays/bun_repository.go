package displays

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// widgetMediaSubquery selects layouts with a widget whose media id list
// contains the quoted identifier.
const widgetMediaSubquery = `?TableAlias.layout_id IN (
	SELECT r.layout_id FROM regions AS r
	JOIN playlists AS p ON p.region_id = r.id
	JOIN widgets AS w ON w.playlist_id = p.id
	WHERE w.media_ids LIKE ? ESCAPE '!')`

// BunRepository implements Store.
type BunRepository struct {
	db        *bun.DB
	schedules repository.Repository[*Schedule]
	groups    repository.Repository[*DisplayGroup]
	displays  repository.Repository[*Display]
	now       func() time.Time
}

// NewBunRepository constructs a display repository backed by bun.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:        db,
		schedules: NewScheduleRepository(db),
		groups:    NewDisplayGroupRepository(db),
		displays:  NewDisplayRepository(db),
		now:       time.Now,
	}
}

func (r *BunRepository) SchedulesReferencing(ctx context.Context, mediaID string) ([]*Schedule, error) {
	trimmed := strings.TrimSpace(mediaID)
	if trimmed == "" {
		return []*Schedule{}, nil
	}
	legacyIDs, err := r.legacyLayoutsReferencing(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	pattern := `%"` + escapeLike(trimmed) + `"%`
	records, _, err := r.schedules.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				q = q.Where(widgetMediaSubquery, pattern)
				if len(legacyIDs) > 0 {
					q = q.WhereOr("?TableAlias.layout_id IN (?)", bun.In(legacyIDs))
				}
				return q
			})
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedules referencing media %s: %w", trimmed, err)
	}
	return records, nil
}

// legacyLayoutsReferencing returns the ids of layouts still stored as XLF
// with a media element whose id is mediaID. The LIKE narrows the rows that
// get parsed.
func (r *BunRepository) legacyLayoutsReferencing(ctx context.Context, mediaID string) ([]uuid.UUID, error) {
	var rows []*layouts.Layout
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "legacy_xml").
		Where("?TableAlias.legacy_xml LIKE ? ESCAPE '!'", "%"+escapeLike(mediaID)+"%").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("legacy layouts referencing media %s: %w", mediaID, err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if slices.Contains(layouts.LegacyMediaIDs(row.LegacyXML), mediaID) {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (r *BunRepository) DisplayGroupsOf(ctx context.Context, scheduleID uuid.UUID) ([]*DisplayGroup, error) {
	records, _, err := r.groups.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id IN (SELECT sdg.display_group_id FROM schedule_display_groups AS sdg WHERE sdg.schedule_id = ?)", scheduleID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("display groups of schedule %s: %w", scheduleID, err)
	}
	return records, nil
}

func (r *BunRepository) DisplaysOf(ctx context.Context, displayGroupID uuid.UUID) ([]*Display, error) {
	records, _, err := r.displays.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id IN (SELECT dgm.display_id FROM display_group_members AS dgm WHERE dgm.display_group_id = ?)", displayGroupID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("displays of group %s: %w", displayGroupID, err)
	}
	return records, nil
}

func (r *BunRepository) Notify(ctx context.Context, displayID uuid.UUID) error {
	if _, err := r.GetDisplay(ctx, displayID); err != nil {
		return err
	}
	now := r.now()
	record := &Display{
		ID:                   displayID,
		MediaInventoryStatus: MediaInventoryPending,
		NotifiedAt:           &now,
	}
	if _, err := r.displays.Update(ctx, record,
		repository.UpdateByID(displayID.String()),
		repository.UpdateColumns("media_inventory_status", "notified_at"),
	); err != nil {
		return fmt.Errorf("notify display %s: %w", displayID, err)
	}
	return nil
}

func (r *BunRepository) CreateDisplay(ctx context.Context, display *Display) (*Display, error) {
	record, err := r.displays.Create(ctx, display)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) GetDisplay(ctx context.Context, id uuid.UUID) (*Display, error) {
	record, err := r.displays.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "display", id.String())
	}
	return record, nil
}

func (r *BunRepository) CreateDisplayGroup(ctx context.Context, group *DisplayGroup, displayIDs ...uuid.UUID) (*DisplayGroup, error) {
	if group == nil {
		return nil, fmt.Errorf("displays: display group is nil")
	}
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(group).Exec(ctx); err != nil {
			return fmt.Errorf("insert display group: %w", err)
		}
		if len(displayIDs) == 0 {
			return nil
		}
		members := make([]*DisplayGroupMember, 0, len(displayIDs))
		for _, id := range displayIDs {
			members = append(members, &DisplayGroupMember{DisplayGroupID: group.ID, DisplayID: id})
		}
		if _, err := tx.NewInsert().Model(&members).Exec(ctx); err != nil {
			return fmt.Errorf("insert display group members: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (r *BunRepository) CreateSchedule(ctx context.Context, schedule *Schedule, displayGroupIDs ...uuid.UUID) (*Schedule, error) {
	if schedule == nil {
		return nil, fmt.Errorf("displays: schedule is nil")
	}
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(schedule).Exec(ctx); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
		if len(displayGroupIDs) == 0 {
			return nil
		}
		links := make([]*ScheduleDisplayGroup, 0, len(displayGroupIDs))
		for _, id := range displayGroupIDs {
			links = append(links, &ScheduleDisplayGroup{ScheduleID: schedule.ID, DisplayGroupID: id})
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("insert schedule display groups: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(value)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
