package layouts

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CurrentSchemaVersion is the format generation of layouts stored as a
// normalized region/playlist/widget graph. Rows below it may still carry an
// inline XLF document.
const CurrentSchemaVersion = 3

// OptionKind discriminates how a widget option was stored in XLF.
type OptionKind string

const (
	// OptionKindAttribute options were child elements of <options> holding text.
	OptionKindAttribute OptionKind = "attribute"
	// OptionKindCData options were child elements of <raw> holding unescaped content.
	OptionKindCData OptionKind = "cdata"
)

// Layout is the root of the entity graph.
type Layout struct {
	bun.BaseModel `bun:"table:layouts,alias:l"`

	ID                uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name              string     `bun:"name,notnull" json:"name"`
	Description       string     `bun:"description" json:"description,omitempty"`
	Width             float64    `bun:"width,notnull" json:"width"`
	Height            float64    `bun:"height,notnull" json:"height"`
	BackgroundColor   string     `bun:"background_color" json:"background_color,omitempty"`
	BackgroundImageID *uuid.UUID `bun:"background_image_id,type:uuid" json:"background_image_id,omitempty"`
	BackgroundZIndex  int        `bun:"background_z_index,notnull,default:0" json:"background_z_index"`
	OwnerID           int        `bun:"owner_id,notnull" json:"owner_id"`
	CampaignID        uuid.UUID  `bun:"campaign_id,type:uuid" json:"campaign_id"`
	SchemaVersion     int        `bun:"schema_version,notnull" json:"schema_version"`
	Retired           bool       `bun:"retired,notnull,default:false" json:"retired"`
	Status            int        `bun:"status,notnull,default:0" json:"status"`
	Tags              []string   `bun:"tags,type:jsonb" json:"tags"`
	LegacyXML         string     `bun:"legacy_xml" json:"-"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Regions []*Region `bun:"rel:has-many,join:id=layout_id" json:"regions"`
}

// Region is a rectangular area of a layout playing one playlist at a time.
type Region struct {
	bun.BaseModel `bun:"table:regions,alias:r"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	LayoutID uuid.UUID `bun:"layout_id,notnull,type:uuid" json:"layout_id"`
	OwnerID  int       `bun:"owner_id,notnull" json:"owner_id"`
	Name     string    `bun:"name,notnull" json:"name"`
	Width    float64   `bun:"width,notnull" json:"width"`
	Height   float64   `bun:"height,notnull" json:"height"`
	Top      float64   `bun:"offset_top,notnull" json:"top"`
	Left     float64   `bun:"offset_left,notnull" json:"left"`
	Position int       `bun:"position,notnull,default:0" json:"position"`

	Playlists []*Playlist `bun:"rel:has-many,join:id=region_id" json:"playlists"`
}

// Playlist is the ordered widget sequence of a region.
type Playlist struct {
	bun.BaseModel `bun:"table:playlists,alias:p"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RegionID uuid.UUID `bun:"region_id,notnull,type:uuid" json:"region_id"`
	Position int       `bun:"position,notnull,default:0" json:"position"`

	Widgets []*Widget `bun:"rel:has-many,join:id=playlist_id" json:"widgets"`
}

// Widget is one item of a playlist rendered by the module named in Type.
type Widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PlaylistID uuid.UUID `bun:"playlist_id,notnull,type:uuid" json:"playlist_id"`
	Type       string    `bun:"type,notnull" json:"type"`
	OwnerID    int       `bun:"owner_id,notnull" json:"owner_id"`
	// Duration in seconds; zero means the module default.
	Duration int `bun:"duration,notnull,default:0" json:"duration"`
	// MediaIDs references stored library media. Empty for region specific modules.
	MediaIDs []string `bun:"media_ids,type:jsonb" json:"media_ids"`
	Position int      `bun:"position,notnull,default:0" json:"position"`

	Options []*WidgetOption `bun:"rel:has-many,join:id=widget_id" json:"options"`
}

// WidgetOption is a single key/value setting of a widget.
type WidgetOption struct {
	bun.BaseModel `bun:"table:widget_options,alias:wo"`

	ID       uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	WidgetID uuid.UUID  `bun:"widget_id,notnull,type:uuid" json:"widget_id"`
	Key      string     `bun:"option_key,notnull" json:"option"`
	Value    string     `bun:"value" json:"value"`
	Kind     OptionKind `bun:"kind,notnull" json:"kind"`
	Position int        `bun:"position,notnull,default:0" json:"position"`
}

// AddRegion appends region to the layout. A region without a name is named
// after its 1-based position in the layout.
func (l *Layout) AddRegion(region *Region) *Region {
	if region == nil {
		return nil
	}
	if region.Name == "" {
		region.Name = strconv.Itoa(len(l.Regions) + 1)
	}
	region.Position = len(l.Regions)
	if l.ID != uuid.Nil {
		region.LayoutID = l.ID
	}
	l.Regions = append(l.Regions, region)
	return region
}

// AddPlaylist appends playlist to the region.
func (r *Region) AddPlaylist(playlist *Playlist) *Playlist {
	if playlist == nil {
		return nil
	}
	playlist.Position = len(r.Playlists)
	if r.ID != uuid.Nil {
		playlist.RegionID = r.ID
	}
	r.Playlists = append(r.Playlists, playlist)
	return playlist
}

// AddWidget appends widget to the playlist in presentation order.
func (p *Playlist) AddWidget(widget *Widget) *Widget {
	if widget == nil {
		return nil
	}
	widget.Position = len(p.Widgets)
	if p.ID != uuid.Nil {
		widget.PlaylistID = p.ID
	}
	p.Widgets = append(p.Widgets, widget)
	return widget
}

// AddOption appends an option of the given kind.
func (w *Widget) AddOption(kind OptionKind, key, value string) *WidgetOption {
	option := &WidgetOption{
		WidgetID: w.ID,
		Key:      key,
		Value:    value,
		Kind:     kind,
		Position: len(w.Options),
	}
	w.Options = append(w.Options, option)
	return option
}

// Option returns the first option stored under key.
func (w *Widget) Option(key string) (*WidgetOption, bool) {
	for _, option := range w.Options {
		if option != nil && option.Key == key {
			return option, true
		}
	}
	return nil, false
}

// IsLegacy reports whether the layout still stores its structure inline.
func (l *Layout) IsLegacy() bool {
	return l != nil && l.LegacyXML != ""
}

// Resolution is a named canvas size new layouts can be created from.
type Resolution struct {
	bun.BaseModel `bun:"table:resolutions,alias:res"`

	ID      uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name    string    `bun:"name,notnull" json:"name"`
	Width   float64   `bun:"width,notnull" json:"width"`
	Height  float64   `bun:"height,notnull" json:"height"`
	Enabled bool      `bun:"enabled,notnull,default:true" json:"enabled"`
}
