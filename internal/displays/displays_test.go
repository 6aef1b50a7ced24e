package displays_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-signage/internal/displays"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/goliatone/go-signage/internal/modules"
	"github.com/goliatone/go-signage/internal/storage"
	"github.com/goliatone/go-signage/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type harness struct {
	store   displays.Store
	layouts layouts.LayoutRepository
	index   func(*layouts.Layout)
	legacy  func(*testing.T, *layouts.Layout)
}

func harnesses(t *testing.T) map[string]harness {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDBNamed(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	memory := displays.NewMemoryRepository()
	return map[string]harness{
		"memory": {
			store:   memory,
			layouts: layouts.NewMemoryLayoutRepository(),
			index:   memory.IndexLayout,
			legacy:  func(_ *testing.T, layout *layouts.Layout) { memory.IndexLayout(layout) },
		},
		"bun": {
			store:   displays.NewBunRepository(db),
			layouts: layouts.NewBunLayoutRepository(db),
			index:   func(*layouts.Layout) {},
			legacy: func(t *testing.T, layout *layouts.Layout) {
				t.Helper()
				if _, err := db.NewInsert().Model(layout).Exec(context.Background()); err != nil {
					t.Fatalf("insert legacy layout: %v", err)
				}
			},
		},
	}
}

func saveLayout(t *testing.T, h harness, name string, mediaIDs ...string) *layouts.Layout {
	t.Helper()
	draft := &layouts.Layout{Name: name, Width: 100, Height: 100}
	playlist := draft.AddRegion(&layouts.Region{Width: 100, Height: 100}).AddPlaylist(&layouts.Playlist{})
	for _, id := range mediaIDs {
		playlist.AddWidget(&layouts.Widget{Type: "image", MediaIDs: []string{id}})
	}
	playlist.AddWidget(&layouts.Widget{Type: "text"})

	saved, err := layouts.NewService(h.layouts, modules.NewDefaultRegistry()).Save(context.Background(), draft)
	if err != nil {
		t.Fatalf("save layout %s: %v", name, err)
	}
	h.index(saved)
	return saved
}

func saveLegacyLayout(t *testing.T, h harness, name, document string) *layouts.Layout {
	t.Helper()
	layout := &layouts.Layout{ID: uuid.New(), Name: name, Width: 1, Height: 1, SchemaVersion: 1, LegacyXML: document}
	h.legacy(t, layout)
	return layout
}

func TestCascadeQueries(t *testing.T) {
	for name, h := range harnesses(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mediaID := uuid.New().String()

			withMedia := saveLayout(t, h, "with", mediaID, "other")
			withoutMedia := saveLayout(t, h, "without", "unrelated")
			likeTrap := saveLayout(t, h, "trap", mediaID+"0")
			legacy := saveLegacyLayout(t, h, "legacy", `<layout width="1" height="1"><region id="r1"><media id="`+mediaID+`" type="image" duration="10"/></region></layout>`)
			legacyTrap := saveLegacyLayout(t, h, "legacy-trap", `<layout width="1" height="1"><region id="r1"><media id="m1" type="image" duration="10" lkid="`+mediaID+`"/></region></layout>`)

			one, err := h.store.CreateDisplay(ctx, &displays.Display{ID: uuid.New(), Name: "one"})
			if err != nil {
				t.Fatalf("create display: %v", err)
			}
			two, err := h.store.CreateDisplay(ctx, &displays.Display{ID: uuid.New(), Name: "two"})
			if err != nil {
				t.Fatalf("create display: %v", err)
			}
			group, err := h.store.CreateDisplayGroup(ctx, &displays.DisplayGroup{ID: uuid.New(), Name: "lobby"}, one.ID, two.ID)
			if err != nil {
				t.Fatalf("create group: %v", err)
			}

			scheduled, err := h.store.CreateSchedule(ctx, &displays.Schedule{ID: uuid.New(), Name: "a", LayoutID: withMedia.ID}, group.ID)
			if err != nil {
				t.Fatalf("create schedule: %v", err)
			}
			if _, err := h.store.CreateSchedule(ctx, &displays.Schedule{ID: uuid.New(), Name: "b", LayoutID: withoutMedia.ID}, group.ID); err != nil {
				t.Fatalf("create schedule: %v", err)
			}
			if _, err := h.store.CreateSchedule(ctx, &displays.Schedule{ID: uuid.New(), Name: "c", LayoutID: likeTrap.ID}); err != nil {
				t.Fatalf("create schedule: %v", err)
			}
			legacyScheduled, err := h.store.CreateSchedule(ctx, &displays.Schedule{ID: uuid.New(), Name: "d", LayoutID: legacy.ID})
			if err != nil {
				t.Fatalf("create schedule: %v", err)
			}
			if _, err := h.store.CreateSchedule(ctx, &displays.Schedule{ID: uuid.New(), Name: "e", LayoutID: legacyTrap.ID}); err != nil {
				t.Fatalf("create schedule: %v", err)
			}

			schedules, err := h.store.SchedulesReferencing(ctx, mediaID)
			if err != nil {
				t.Fatalf("schedules referencing: %v", err)
			}
			matched := map[uuid.UUID]bool{}
			for _, schedule := range schedules {
				matched[schedule.ID] = true
			}
			if len(schedules) != 2 || !matched[scheduled.ID] || !matched[legacyScheduled.ID] {
				t.Fatalf("expected schedules a and d, got %+v", schedules)
			}

			groups, err := h.store.DisplayGroupsOf(ctx, scheduled.ID)
			if err != nil || len(groups) != 1 || groups[0].ID != group.ID {
				t.Fatalf("unexpected groups %+v (%v)", groups, err)
			}

			members, err := h.store.DisplaysOf(ctx, group.ID)
			if err != nil || len(members) != 2 {
				t.Fatalf("unexpected displays %+v (%v)", members, err)
			}

			if err := h.store.Notify(ctx, one.ID); err != nil {
				t.Fatalf("notify: %v", err)
			}
			notified, err := h.store.GetDisplay(ctx, one.ID)
			if err != nil {
				t.Fatalf("get display: %v", err)
			}
			if notified.MediaInventoryStatus != displays.MediaInventoryPending || notified.NotifiedAt == nil {
				t.Fatalf("expected display flagged, got %+v", notified)
			}

			var nf *displays.NotFoundError
			if err := h.store.Notify(ctx, uuid.New()); !errors.As(err, &nf) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
		})
	}
}
