package layouts

import (
	"time"

	"github.com/google/uuid"
)

// CloneAsNew returns an identity-stripped deep copy of source owned by
// ownerID. Every nested identifier and foreign key is reset, the campaign
// link and timestamps are cleared and the tag set is replaced by tags.
// Owners of nested regions and widgets are kept.
func CloneAsNew(source *Layout, ownerID int, name, description string, tags []string) *Layout {
	if source == nil {
		return nil
	}
	cloned := copyLayout(source, true)
	cloned.OwnerID = ownerID
	cloned.Name = name
	cloned.Description = description
	cloned.Tags = NormalizeTags(tags)
	return cloned
}

// copyLayout deep copies a layout graph. When strip is set, identifiers and
// persistence state are dropped.
func copyLayout(src *Layout, strip bool) *Layout {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Tags = append([]string{}, src.Tags...)
	if src.BackgroundImageID != nil {
		id := *src.BackgroundImageID
		dst.BackgroundImageID = &id
	}
	if strip {
		dst.ID = uuid.Nil
		dst.CampaignID = uuid.Nil
		dst.LegacyXML = ""
		dst.Retired = false
		dst.CreatedAt = time.Time{}
		dst.UpdatedAt = time.Time{}
	}

	dst.Regions = nil
	if src.Regions != nil {
		dst.Regions = make([]*Region, 0, len(src.Regions))
	}
	for _, region := range src.Regions {
		if region == nil {
			continue
		}
		dst.Regions = append(dst.Regions, copyRegion(region, strip))
	}
	return &dst
}

func copyRegion(src *Region, strip bool) *Region {
	dst := *src
	if strip {
		dst.ID = uuid.Nil
		dst.LayoutID = uuid.Nil
	}
	dst.Playlists = nil
	if src.Playlists != nil {
		dst.Playlists = make([]*Playlist, 0, len(src.Playlists))
	}
	for _, playlist := range src.Playlists {
		if playlist == nil {
			continue
		}
		dst.Playlists = append(dst.Playlists, copyPlaylist(playlist, strip))
	}
	return &dst
}

func copyPlaylist(src *Playlist, strip bool) *Playlist {
	dst := *src
	if strip {
		dst.ID = uuid.Nil
		dst.RegionID = uuid.Nil
	}
	dst.Widgets = nil
	if src.Widgets != nil {
		dst.Widgets = make([]*Widget, 0, len(src.Widgets))
	}
	for _, widget := range src.Widgets {
		if widget == nil {
			continue
		}
		dst.Widgets = append(dst.Widgets, copyWidget(widget, strip))
	}
	return &dst
}

func copyWidget(src *Widget, strip bool) *Widget {
	dst := *src
	if strip {
		dst.ID = uuid.Nil
		dst.PlaylistID = uuid.Nil
	}
	if src.MediaIDs != nil {
		dst.MediaIDs = append([]string{}, src.MediaIDs...)
	}
	dst.Options = nil
	if src.Options != nil {
		dst.Options = make([]*WidgetOption, 0, len(src.Options))
	}
	for _, option := range src.Options {
		if option == nil {
			continue
		}
		copied := *option
		if strip {
			copied.ID = uuid.Nil
			copied.WidgetID = uuid.Nil
		}
		dst.Options = append(dst.Options, &copied)
	}
	return &dst
}
