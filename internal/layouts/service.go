package layouts

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes layout loading, migration and creation.
type Service interface {
	// LoadByID returns the assembled layout. Rows still carrying an XLF
	// document are parsed and overlaid with the row's identity fields.
	LoadByID(ctx context.Context, id uuid.UUID) (*Layout, error)
	// Migrate persists the normalized graph of a legacy row and clears its
	// document. Rows that are already normalized are returned unchanged.
	Migrate(ctx context.Context, id uuid.UUID) (*Layout, error)
	// CreateFromResolution builds an unsaved layout sized to a resolution
	// with one full-canvas region.
	CreateFromResolution(ctx context.Context, req CreateFromResolutionRequest) (*Layout, error)
	// CreateFromTemplate builds an unsaved, identity-stripped copy of a
	// template layout.
	CreateFromTemplate(ctx context.Context, req CreateFromTemplateRequest) (*Layout, error)
	// Save validates and persists a new layout with its whole graph.
	Save(ctx context.Context, layout *Layout) (*Layout, error)
}

// CreateFromResolutionRequest describes a blank layout.
type CreateFromResolutionRequest struct {
	ResolutionID uuid.UUID
	OwnerID      int
	Name         string
	Description  string
	// Tags is a comma separated list.
	Tags string
}

// CreateFromTemplateRequest describes a layout instantiated from a template.
type CreateFromTemplateRequest struct {
	TemplateID  uuid.UUID
	OwnerID     int
	Name        string
	Description string
	// Tags is a comma separated list.
	Tags string
}

const defaultBackgroundColor = "#000"

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures layout service behaviour.
type ServiceOption func(*service)

// WithClock overrides the time source used by the service.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the logger used for migration events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchemaVersion overrides the generation stamped on migrated layouts.
func WithSchemaVersion(version int) ServiceOption {
	return func(s *service) {
		if version > 0 {
			s.schemaVersion = version
		}
	}
}

// WithResolutionRepository wires the resolution lookup used by CreateFromResolution.
func WithResolutionRepository(repo ResolutionRepository) ServiceOption {
	return func(s *service) {
		if repo != nil {
			s.resolutions = repo
		}
	}
}

type service struct {
	layouts       LayoutRepository
	resolutions   ResolutionRepository
	parser        *XLFParser
	now           func() time.Time
	id            IDGenerator
	logger        interfaces.Logger
	schemaVersion int
}

// NewService constructs a layout service.
func NewService(repo LayoutRepository, modules interfaces.ModuleResolver, opts ...ServiceOption) Service {
	s := &service{
		layouts:       repo,
		parser:        NewXLFParser(modules),
		now:           time.Now,
		id:            uuid.New,
		logger:        logging.NoOp(),
		schemaVersion: CurrentSchemaVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) LoadByID(ctx context.Context, id uuid.UUID) (*Layout, error) {
	layout, _, err := s.load(ctx, id)
	return layout, err
}

// load returns the assembled layout and the raw row it was built from.
func (s *service) load(ctx context.Context, id uuid.UUID) (*Layout, *Layout, error) {
	if id == uuid.Nil {
		return nil, nil, ErrLayoutIDRequired
	}
	row, err := s.layouts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !row.IsLegacy() {
		regions, err := s.layouts.LoadRegions(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		layout := copyLayout(row, false)
		layout.Regions = regions
		return layout, row, nil
	}

	layout, err := s.parser.Parse([]byte(row.LegacyXML))
	if err != nil {
		s.logger.Warn("layouts.load.legacy_failed", "layout_id", id, "error", err)
		return nil, nil, fmt.Errorf("layout %s: %w", id, err)
	}
	overlayRow(layout, row, s.schemaVersion)

	s.logger.Debug("layouts.load.legacy", "layout_id", id, "regions", len(layout.Regions))
	return layout, row, nil
}

// overlayRow copies the row's authoritative identity fields onto a layout
// parsed from the row's document.
func overlayRow(layout, row *Layout, schemaVersion int) {
	layout.ID = row.ID
	layout.Name = row.Name
	layout.Description = row.Description
	layout.Status = row.Status
	layout.CampaignID = row.CampaignID
	layout.OwnerID = row.OwnerID
	layout.BackgroundImageID = nil
	if row.BackgroundImageID != nil {
		imageID := *row.BackgroundImageID
		layout.BackgroundImageID = &imageID
	}
	layout.SchemaVersion = schemaVersion
}

func (s *service) Migrate(ctx context.Context, id uuid.UUID) (*Layout, error) {
	layout, row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !row.IsLegacy() {
		return layout, nil
	}

	// Columns the document cannot carry come from the row.
	layout.Tags = append([]string{}, row.Tags...)
	layout.Retired = row.Retired
	layout.BackgroundZIndex = row.BackgroundZIndex
	layout.CreatedAt = row.CreatedAt
	layout.UpdatedAt = s.now()
	layout.LegacyXML = ""
	s.assignIdentifiers(layout)

	persisted, err := s.layouts.ReplaceGraph(ctx, layout)
	if err != nil {
		return nil, err
	}
	s.logger.Info("layouts.migrate.completed", "layout_id", id, "schema_version", persisted.SchemaVersion)
	return persisted, nil
}

func (s *service) CreateFromResolution(ctx context.Context, req CreateFromResolutionRequest) (*Layout, error) {
	if req.ResolutionID == uuid.Nil {
		return nil, ErrResolutionRequired
	}
	if s.resolutions == nil {
		return nil, fmt.Errorf("layouts: resolution repository not configured")
	}
	resolution, err := s.resolutions.GetByID(ctx, req.ResolutionID)
	if err != nil {
		return nil, err
	}

	layout := &Layout{
		Name:             req.Name,
		Description:      req.Description,
		Width:            resolution.Width,
		Height:           resolution.Height,
		BackgroundColor:  defaultBackgroundColor,
		BackgroundZIndex: 0,
		OwnerID:          req.OwnerID,
		SchemaVersion:    s.schemaVersion,
		Tags:             ParseTags(req.Tags),
	}
	region := layout.AddRegion(&Region{
		OwnerID: req.OwnerID,
		Name:    req.Name + "-1",
		Width:   resolution.Width,
		Height:  resolution.Height,
	})
	region.AddPlaylist(&Playlist{})
	return layout, nil
}

func (s *service) CreateFromTemplate(ctx context.Context, req CreateFromTemplateRequest) (*Layout, error) {
	if req.TemplateID == uuid.Nil {
		return nil, ErrTemplateRequired
	}
	template, err := s.LoadByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	return CloneAsNew(template, req.OwnerID, req.Name, req.Description, ParseTags(req.Tags)), nil
}

func (s *service) Save(ctx context.Context, layout *Layout) (*Layout, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: layout is nil", ErrLayoutInvalid)
	}
	if layout.ID != uuid.Nil {
		return nil, ErrLayoutExists
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	record := copyLayout(layout, false)
	if record.SchemaVersion == 0 {
		record.SchemaVersion = s.schemaVersion
	}
	if record.Tags == nil {
		record.Tags = []string{}
	}
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.ID = s.id()
	s.assignIdentifiers(record)

	created, err := s.layouts.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("layouts.save.completed", "layout_id", created.ID, "regions", len(created.Regions))
	return created, nil
}

// assignIdentifiers gives every unassigned node an identifier, links each
// node to its parent and renumbers positions in sequence order.
func (s *service) assignIdentifiers(layout *Layout) {
	for rIdx, region := range layout.Regions {
		if region == nil {
			continue
		}
		if region.ID == uuid.Nil {
			region.ID = s.id()
		}
		region.LayoutID = layout.ID
		region.Position = rIdx
		for pIdx, playlist := range region.Playlists {
			if playlist == nil {
				continue
			}
			if playlist.ID == uuid.Nil {
				playlist.ID = s.id()
			}
			playlist.RegionID = region.ID
			playlist.Position = pIdx
			for wIdx, widget := range playlist.Widgets {
				if widget == nil {
					continue
				}
				if widget.ID == uuid.Nil {
					widget.ID = s.id()
				}
				widget.PlaylistID = playlist.ID
				widget.Position = wIdx
				if widget.MediaIDs == nil {
					widget.MediaIDs = []string{}
				}
				for oIdx, option := range widget.Options {
					if option == nil {
						continue
					}
					if option.ID == uuid.Nil {
						option.ID = s.id()
					}
					option.WidgetID = widget.ID
					option.Position = oIdx
				}
			}
		}
	}
}
