package signage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-signage"
	"github.com/goliatone/go-signage/internal/layouts"
	"github.com/google/uuid"
)

const lobbyXLF = `<?xml version="1.0"?>
<layout schemaVersion="1" width="1280" height="720" bgcolor="#101010">
  <region id="r1" userId="1" width="1280" height="720" top="0" left="0">
    <media id="7" type="image" duration="10" userId="1">
      <options><uri>7.png</uri></options>
      <raw/>
    </media>
    <media id="8" type="text" duration="20" userId="1">
      <options><direction>left</direction></options>
      <raw><text><![CDATA[<p>Hello</p>]]></text></raw>
    </media>
  </region>
</layout>`

func newMemoryModule(t *testing.T) *signage.Module {
	t.Helper()
	cfg := signage.DefaultConfig()
	cfg.Library.Location = t.TempDir()
	module, err := signage.New(cfg, signage.WithMemoryStorage())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleParsesSavesAndEncodesLayouts(t *testing.T) {
	ctx := context.Background()
	module := newMemoryModule(t)

	parsed, err := module.ParseXLF([]byte(lobbyXLF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	parsed.Name = "Lobby"

	saved, err := module.Layouts().Save(ctx, parsed)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := module.LoadLayout(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Width != 1280 || len(loaded.Regions) != 1 {
		t.Fatalf("unexpected layout %+v", loaded)
	}
	if got := len(loaded.Regions[0].Playlists[0].Widgets); got != 2 {
		t.Fatalf("expected 2 widgets, got %d", got)
	}

	document, err := module.EncodeXLF(loaded)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(document), `type="text"`) || !strings.Contains(string(document), "<![CDATA[<p>Hello</p>]]>") {
		t.Fatalf("unexpected document %s", document)
	}

	if err := module.MigrateLayout(ctx, saved.ID); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestModuleMigrateUnknownLayout(t *testing.T) {
	module := newMemoryModule(t)

	err := module.MigrateLayout(context.Background(), uuid.New())
	if !layouts.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestModuleCapabilities(t *testing.T) {
	module := newMemoryModule(t)

	caps, ok := module.Capabilities("image")
	if !ok || !caps.ImageProcessing {
		t.Fatalf("expected image module with image processing, got %+v %v", caps, ok)
	}
	if _, ok := module.Capabilities("legacy-flash-widget"); ok {
		t.Fatal("expected unknown module type")
	}
	if len(module.Modules()) == 0 {
		t.Fatal("expected installed modules")
	}
}

func TestModuleProcessImagesDisabled(t *testing.T) {
	cfg := signage.DefaultConfig()
	cfg.Features.ImageProcessing = false
	module, err := signage.New(cfg, signage.WithMemoryStorage())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	if module.ImageProcessingEnabled() {
		t.Fatal("expected image processing disabled")
	}
	if err := module.ProcessImages(context.Background(), signage.ProcessImagesCommand{}); !errors.Is(err, signage.ErrImageProcessingDisabled) {
		t.Fatalf("expected ErrImageProcessingDisabled, got %v", err)
	}
}

func TestModuleProcessImagesWithNothingPending(t *testing.T) {
	module := newMemoryModule(t)

	if err := module.ProcessImages(context.Background(), signage.ProcessImagesCommand{}); err != nil {
		t.Fatalf("process images: %v", err)
	}
}
