package layouts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks the structural rules a layout must satisfy before it is
// persisted. The returned error matches ErrLayoutInvalid and wraps the
// per-field validation.Errors.
func (l *Layout) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: layout is nil", ErrLayoutInvalid)
	}

	errs := validation.Errors{}
	if strings.TrimSpace(l.Name) == "" {
		errs["name"] = validation.NewError("signage.layouts.name_required", "name is required")
	}
	if l.Width <= 0 {
		errs["width"] = validation.NewError("signage.layouts.width_invalid", "width must be greater than zero")
	}
	if l.Height <= 0 {
		errs["height"] = validation.NewError("signage.layouts.height_invalid", "height must be greater than zero")
	}
	if err := validation.Validate(l.BackgroundColor, validation.Match(colorPattern).
		ErrorObject(validation.NewError("signage.layouts.background_color_invalid", "background color must be #rgb, #rrggbb or #rrggbbaa"))); err != nil {
		errs["background_color"] = err
	}

	for idx, region := range l.Regions {
		if region == nil {
			errs["regions."+strconv.Itoa(idx)] = validation.NewError("signage.layouts.region_missing", "region is nil")
			continue
		}
		if region.Width < 0 || region.Height < 0 {
			errs["regions."+strconv.Itoa(idx)] = validation.NewError("signage.layouts.region_geometry_invalid", "region width and height must not be negative")
			continue
		}
		for _, playlist := range region.Playlists {
			if playlist == nil {
				continue
			}
			for wIdx, widget := range playlist.Widgets {
				if widget != nil && strings.TrimSpace(widget.Type) == "" {
					key := "regions." + strconv.Itoa(idx) + ".widgets." + strconv.Itoa(wIdx)
					errs[key] = validation.NewError("signage.layouts.widget_type_required", "widget type is required")
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrLayoutInvalid, errs)
	}
	return nil
}
