package layouts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/google/uuid"
)

const legacyDocument = `<layout schemaVersion="1" width="800" height="600" bgcolor="#123">
  <region id="r1" userId="11" width="800" height="600" top="0" left="0">
    <media id="55" type="image" userid="11" duration="8"><options><scaleType>fit</scaleType></options></media>
    <media id="t" type="text" userid="11" duration="4"><raw><text><![CDATA[<h1>Hi</h1>]]></text></raw></media>
  </region>
</layout>`

type fixture struct {
	ctx         context.Context
	repo        layouts.LayoutRepository
	resolutions layouts.ResolutionRepository
	service     layouts.Service
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := layouts.NewMemoryLayoutRepository()
	resolutions := layouts.NewMemoryResolutionRepository()
	return &fixture{
		ctx:         context.Background(),
		repo:        repo,
		resolutions: resolutions,
		now:         now,
		service: layouts.NewService(repo, newResolver(),
			layouts.WithClock(func() time.Time { return now }),
			layouts.WithResolutionRepository(resolutions),
		),
	}
}

func (f *fixture) seedLegacy(t *testing.T) *layouts.Layout {
	t.Helper()
	imageID := uuid.New()
	row := &layouts.Layout{
		ID:                uuid.New(),
		Name:              "Row name",
		Description:       "Row description",
		Width:             1,
		Height:            1,
		BackgroundImageID: &imageID,
		BackgroundZIndex:  2,
		OwnerID:           5,
		CampaignID:        uuid.New(),
		SchemaVersion:     1,
		Status:            3,
		Tags:              []string{"kept"},
		LegacyXML:         legacyDocument,
		CreatedAt:         f.now.Add(-time.Hour),
	}
	if _, err := f.repo.Create(f.ctx, row); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	return row
}

func TestLoadByIDMigratesLegacyRowOnRead(t *testing.T) {
	f := newFixture(t)
	row := f.seedLegacy(t)

	layout, err := f.service.LoadByID(f.ctx, row.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if layout.ID != row.ID || layout.Name != row.Name || layout.Description != row.Description {
		t.Fatalf("identity not overlaid: %+v", layout)
	}
	if layout.Status != row.Status || layout.CampaignID != row.CampaignID || layout.OwnerID != row.OwnerID {
		t.Fatalf("metadata not overlaid: %+v", layout)
	}
	if layout.BackgroundImageID == nil || *layout.BackgroundImageID != *row.BackgroundImageID {
		t.Fatalf("background image not overlaid: %v", layout.BackgroundImageID)
	}
	if layout.SchemaVersion != layouts.CurrentSchemaVersion {
		t.Fatalf("expected schema version %d, got %d", layouts.CurrentSchemaVersion, layout.SchemaVersion)
	}
	if layout.Width != 800 || layout.Height != 600 || layout.BackgroundColor != "#123" {
		t.Fatalf("structure should come from the document, got %+v", layout)
	}
	if len(layout.Tags) != 0 {
		t.Fatalf("expected no tags on legacy read, got %v", layout.Tags)
	}

	parsed, err := layouts.NewXLFParser(newResolver()).Parse([]byte(legacyDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(layout.Regions) != len(parsed.Regions) {
		t.Fatalf("expected %d regions, got %d", len(parsed.Regions), len(layout.Regions))
	}
	got := layout.Regions[0].Playlists[0].Widgets
	want := parsed.Regions[0].Playlists[0].Widgets
	if len(got) != len(want) {
		t.Fatalf("expected %d widgets, got %d", len(want), len(got))
	}
	for idx := range want {
		if got[idx].Type != want[idx].Type || len(got[idx].Options) != len(want[idx].Options) {
			t.Fatalf("widget %d differs from parse output", idx)
		}
	}

	stored, err := f.repo.GetByID(f.ctx, row.ID)
	if err != nil {
		t.Fatalf("get row: %v", err)
	}
	if !stored.IsLegacy() {
		t.Fatalf("load must not write back")
	}
}

func TestLoadByIDReturnsNormalizedGraph(t *testing.T) {
	f := newFixture(t)
	source := persistedLayout()
	source.Retired = false
	if _, err := f.repo.Create(f.ctx, source); err != nil {
		t.Fatalf("seed: %v", err)
	}

	layout, err := f.service.LoadByID(f.ctx, source.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if layout.Name != "template" || len(layout.Regions) != 1 {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if len(layout.Tags) != 1 || layout.Tags[0] != "old" {
		t.Fatalf("expected row tags, got %v", layout.Tags)
	}
	if got := len(layout.Regions[0].Playlists[0].Widgets[0].Options); got != 2 {
		t.Fatalf("expected 2 options, got %d", got)
	}
}

func TestLoadByIDErrors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.LoadByID(f.ctx, uuid.Nil); !errors.Is(err, layouts.ErrLayoutIDRequired) {
		t.Fatalf("expected ErrLayoutIDRequired, got %v", err)
	}

	_, err := f.service.LoadByID(f.ctx, uuid.New())
	if !layouts.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	broken := &layouts.Layout{ID: uuid.New(), Name: "broken", LegacyXML: `<layout width="x"/>`}
	if _, err := f.repo.Create(f.ctx, broken); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.service.LoadByID(f.ctx, broken.ID); !errors.Is(err, layouts.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestMigrateWritesBackNormalizedGraph(t *testing.T) {
	f := newFixture(t)
	row := f.seedLegacy(t)

	migrated, err := f.service.Migrate(f.ctx, row.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if migrated.IsLegacy() {
		t.Fatalf("expected document cleared")
	}
	if migrated.ID != row.ID || migrated.SchemaVersion != layouts.CurrentSchemaVersion {
		t.Fatalf("unexpected migrated layout %+v", migrated)
	}
	if len(migrated.Tags) != 1 || migrated.Tags[0] != "kept" || migrated.BackgroundZIndex != 2 {
		t.Fatalf("expected row-only columns kept, got %+v", migrated)
	}
	if !migrated.UpdatedAt.Equal(f.now) {
		t.Fatalf("expected updated_at %s, got %s", f.now, migrated.UpdatedAt)
	}

	region := migrated.Regions[0]
	if region.ID == uuid.Nil || region.LayoutID != row.ID {
		t.Fatalf("expected region identity assigned, got %+v", region)
	}
	widget := region.Playlists[0].Widgets[1]
	if widget.ID == uuid.Nil || widget.PlaylistID != region.Playlists[0].ID || widget.Position != 1 {
		t.Fatalf("expected widget identity assigned, got %+v", widget)
	}
	if widget.Options[0].WidgetID != widget.ID {
		t.Fatalf("expected option linked to widget")
	}

	reloaded, err := f.service.LoadByID(f.ctx, row.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Regions[0].ID != region.ID {
		t.Fatalf("expected normalized graph on reload")
	}

	again, err := f.service.Migrate(f.ctx, row.ID)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if again.Regions[0].ID != region.ID {
		t.Fatalf("expected migrate to be idempotent")
	}
}

func TestCreateFromResolution(t *testing.T) {
	f := newFixture(t)
	resolution, err := f.resolutions.Create(f.ctx, &layouts.Resolution{Name: "1080p", Width: 1920, Height: 1080, Enabled: true})
	if err != nil {
		t.Fatalf("seed resolution: %v", err)
	}

	layout, err := f.service.CreateFromResolution(f.ctx, layouts.CreateFromResolutionRequest{
		ResolutionID: resolution.ID,
		OwnerID:      8,
		Name:         "Lobby",
		Description:  "desc",
		Tags:         "a, b,a",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if layout.ID != uuid.Nil {
		t.Fatalf("expected unsaved layout")
	}
	if layout.Width != 1920 || layout.Height != 1080 || layout.BackgroundColor != "#000" || layout.BackgroundZIndex != 0 {
		t.Fatalf("unexpected canvas %+v", layout)
	}
	if layout.OwnerID != 8 || layout.SchemaVersion != layouts.CurrentSchemaVersion {
		t.Fatalf("unexpected owner/version %+v", layout)
	}
	if len(layout.Tags) != 2 {
		t.Fatalf("unexpected tags %v", layout.Tags)
	}
	if len(layout.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(layout.Regions))
	}
	region := layout.Regions[0]
	if region.Name != "Lobby-1" || region.Width != 1920 || region.Height != 1080 || region.Top != 0 || region.Left != 0 {
		t.Fatalf("unexpected region %+v", region)
	}
	if len(region.Playlists) != 1 || len(region.Playlists[0].Widgets) != 0 {
		t.Fatalf("expected one empty playlist")
	}

	if _, err := f.service.CreateFromResolution(f.ctx, layouts.CreateFromResolutionRequest{}); !errors.Is(err, layouts.ErrResolutionRequired) {
		t.Fatalf("expected ErrResolutionRequired, got %v", err)
	}
	if _, err := f.service.CreateFromResolution(f.ctx, layouts.CreateFromResolutionRequest{ResolutionID: uuid.New()}); !layouts.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateFromTemplateClonesLoadedLayout(t *testing.T) {
	f := newFixture(t)
	row := f.seedLegacy(t)

	layout, err := f.service.CreateFromTemplate(f.ctx, layouts.CreateFromTemplateRequest{
		TemplateID:  row.ID,
		OwnerID:     21,
		Name:        "From template",
		Description: "copy",
		Tags:        "x",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if layout.ID != uuid.Nil || layout.CampaignID != uuid.Nil {
		t.Fatalf("expected identity stripped, got %+v", layout)
	}
	if layout.OwnerID != 21 || layout.Name != "From template" || len(layout.Tags) != 1 {
		t.Fatalf("unexpected overwritten fields %+v", layout)
	}
	if got := len(layout.Regions[0].Playlists[0].Widgets); got != 2 {
		t.Fatalf("expected template widgets, got %d", got)
	}

	if _, err := f.service.CreateFromTemplate(f.ctx, layouts.CreateFromTemplateRequest{}); !errors.Is(err, layouts.ErrTemplateRequired) {
		t.Fatalf("expected ErrTemplateRequired, got %v", err)
	}
}

func TestSavePersistsGraph(t *testing.T) {
	f := newFixture(t)
	resolution, _ := f.resolutions.Create(f.ctx, &layouts.Resolution{Name: "720p", Width: 1280, Height: 720})
	draft, err := f.service.CreateFromResolution(f.ctx, layouts.CreateFromResolutionRequest{ResolutionID: resolution.ID, Name: "New", OwnerID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	draft.Regions[0].Playlists[0].AddWidget(&layouts.Widget{Type: "text"}).AddOption(layouts.OptionKindCData, "text", "<b>x</b>")

	saved, err := f.service.Save(f.ctx, draft)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == uuid.Nil || !saved.CreatedAt.Equal(f.now) {
		t.Fatalf("expected identity and timestamps, got %+v", saved)
	}
	if draft.ID != uuid.Nil {
		t.Fatalf("save must not mutate its input")
	}

	loaded, err := f.service.LoadByID(f.ctx, saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	option := loaded.Regions[0].Playlists[0].Widgets[0].Options[0]
	if option.Kind != layouts.OptionKindCData || option.Value != "<b>x</b>" {
		t.Fatalf("unexpected option %+v", option)
	}

	if _, err := f.service.Save(f.ctx, saved); !errors.Is(err, layouts.ErrLayoutExists) {
		t.Fatalf("expected ErrLayoutExists, got %v", err)
	}
	if _, err := f.service.Save(f.ctx, &layouts.Layout{Name: "bad"}); !errors.Is(err, layouts.ErrLayoutInvalid) {
		t.Fatalf("expected ErrLayoutInvalid, got %v", err)
	}
}
