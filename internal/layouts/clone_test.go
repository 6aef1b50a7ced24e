package layouts_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/google/uuid"
)

func persistedLayout() *layouts.Layout {
	imageID := uuid.New()
	layout := &layouts.Layout{
		ID:                uuid.New(),
		Name:              "template",
		Description:       "source",
		Width:             1920,
		Height:            1080,
		BackgroundColor:   "#000",
		BackgroundImageID: &imageID,
		OwnerID:           7,
		CampaignID:        uuid.New(),
		SchemaVersion:     layouts.CurrentSchemaVersion,
		Retired:           true,
		Tags:              []string{"old"},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	region := layout.AddRegion(&layouts.Region{ID: uuid.New(), OwnerID: 7, Name: "main", Width: 1920, Height: 1080})
	playlist := region.AddPlaylist(&layouts.Playlist{ID: uuid.New()})
	widget := playlist.AddWidget(&layouts.Widget{ID: uuid.New(), Type: "image", OwnerID: 3, Duration: 10, MediaIDs: []string{"42"}})
	widget.AddOption(layouts.OptionKindAttribute, "scaleType", "fit").ID = uuid.New()
	widget.AddOption(layouts.OptionKindCData, "html", "<p>x</p>").ID = uuid.New()
	return layout
}

func TestCloneAsNewStripsIdentity(t *testing.T) {
	source := persistedLayout()
	clone := layouts.CloneAsNew(source, 99, "copy", "cloned", []string{"lobby", " lobby", "", "north"})

	if clone.ID != uuid.Nil || clone.CampaignID != uuid.Nil {
		t.Fatalf("expected identity reset, got %s / %s", clone.ID, clone.CampaignID)
	}
	if clone.OwnerID != 99 || clone.Name != "copy" || clone.Description != "cloned" {
		t.Fatalf("unexpected overwritten fields %+v", clone)
	}
	if len(clone.Tags) != 2 || clone.Tags[0] != "lobby" || clone.Tags[1] != "north" {
		t.Fatalf("unexpected tags %v", clone.Tags)
	}
	if clone.Retired || !clone.CreatedAt.IsZero() {
		t.Fatalf("expected persistence state reset, got %+v", clone)
	}
	if clone.Width != source.Width || clone.Height != source.Height || clone.BackgroundColor != source.BackgroundColor {
		t.Fatalf("expected canvas copied, got %+v", clone)
	}
	if clone.BackgroundImageID == source.BackgroundImageID {
		t.Fatalf("expected background image reference to be copied, not shared")
	}

	region := clone.Regions[0]
	if region.ID != uuid.Nil || region.LayoutID != uuid.Nil || region.Name != "main" || region.OwnerID != 7 {
		t.Fatalf("unexpected region %+v", region)
	}
	playlist := region.Playlists[0]
	if playlist.ID != uuid.Nil || playlist.RegionID != uuid.Nil {
		t.Fatalf("unexpected playlist %+v", playlist)
	}
	widget := playlist.Widgets[0]
	if widget.ID != uuid.Nil || widget.PlaylistID != uuid.Nil || widget.Type != "image" || widget.OwnerID != 3 {
		t.Fatalf("unexpected widget %+v", widget)
	}
	if len(widget.MediaIDs) != 1 || widget.MediaIDs[0] != "42" {
		t.Fatalf("unexpected media %v", widget.MediaIDs)
	}
	for idx, option := range widget.Options {
		orig := source.Regions[0].Playlists[0].Widgets[0].Options[idx]
		if option.ID != uuid.Nil || option.WidgetID != uuid.Nil {
			t.Fatalf("option %d kept identity", idx)
		}
		if option.Key != orig.Key || option.Value != orig.Value || option.Kind != orig.Kind {
			t.Fatalf("option %d changed: %+v vs %+v", idx, option, orig)
		}
	}
}

func TestCloneAsNewIsDeep(t *testing.T) {
	source := persistedLayout()
	clone := layouts.CloneAsNew(source, 1, "copy", "", nil)

	clone.Regions[0].Name = "mutated"
	clone.Regions[0].Playlists[0].Widgets[0].MediaIDs[0] = "mutated"
	clone.Regions[0].Playlists[0].Widgets[0].Options[0].Value = "mutated"

	original := source.Regions[0]
	if original.Name != "main" {
		t.Fatalf("region shared with clone")
	}
	if original.Playlists[0].Widgets[0].MediaIDs[0] != "42" {
		t.Fatalf("media ids shared with clone")
	}
	if original.Playlists[0].Widgets[0].Options[0].Value != "fit" {
		t.Fatalf("options shared with clone")
	}
	if clone.Tags == nil || len(clone.Tags) != 0 {
		t.Fatalf("expected empty tag set, got %v", clone.Tags)
	}
}

func TestCloneAsNewNil(t *testing.T) {
	if layouts.CloneAsNew(nil, 1, "", "", nil) != nil {
		t.Fatalf("expected nil clone for nil source")
	}
}
