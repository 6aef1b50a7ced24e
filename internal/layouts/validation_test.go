package layouts_test

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-signage/internal/layouts"
)

func TestLayoutValidate(t *testing.T) {
	valid := &layouts.Layout{Name: "ok", Width: 10, Height: 10, BackgroundColor: "#a0b1c2"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid layout, got %v", err)
	}

	for _, color := range []string{"", "#fff", "#FFFFFF", "#00000000"} {
		layout := &layouts.Layout{Name: "ok", Width: 1, Height: 1, BackgroundColor: color}
		if err := layout.Validate(); err != nil {
			t.Fatalf("color %q: unexpected error %v", color, err)
		}
	}

	invalid := &layouts.Layout{Width: 0, Height: -1, BackgroundColor: "red"}
	invalid.AddRegion(&layouts.Region{Width: -5}).AddPlaylist(&layouts.Playlist{})
	err := invalid.Validate()
	if !errors.Is(err, layouts.ErrLayoutInvalid) {
		t.Fatalf("expected ErrLayoutInvalid, got %v", err)
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	for _, key := range []string{"name", "width", "height", "background_color", "regions.0"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected %s error, got %v", key, fields)
		}
	}
}

func TestLayoutValidateWidgetType(t *testing.T) {
	layout := &layouts.Layout{Name: "ok", Width: 1, Height: 1}
	layout.AddRegion(&layouts.Region{}).AddPlaylist(&layouts.Playlist{}).AddWidget(&layouts.Widget{})

	var fields validation.Errors
	if err := layout.Validate(); !errors.As(err, &fields) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := fields["regions.0.widgets.0"]; !ok {
		t.Fatalf("expected widget type error, got %v", fields)
	}
}
