package layouts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// layoutColumns lists the row columns rewritten by ReplaceGraph.
var layoutColumns = []string{
	"name",
	"description",
	"width",
	"height",
	"background_color",
	"background_image_id",
	"background_z_index",
	"owner_id",
	"campaign_id",
	"schema_version",
	"retired",
	"status",
	"tags",
	"legacy_xml",
	"updated_at",
}

// BunLayoutRepository implements LayoutRepository. Layout rows are never
// cached because migration rewrites them in place.
type BunLayoutRepository struct {
	db   *bun.DB
	rows repository.Repository[*Layout]
}

// NewBunLayoutRepository constructs a layout repository backed by bun.
func NewBunLayoutRepository(db *bun.DB) *BunLayoutRepository {
	return &BunLayoutRepository{
		db:   db,
		rows: NewLayoutRowRepository(db),
	}
}

func (r *BunLayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*Layout, error) {
	record, err := r.rows.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "layout", id.String())
	}
	return record, nil
}

func (r *BunLayoutRepository) LoadRegions(ctx context.Context, layoutID uuid.UUID) ([]*Region, error) {
	if r.db == nil {
		return nil, fmt.Errorf("layout repository: database not configured")
	}

	byPosition := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.position ASC")
	}

	var regions []*Region
	err := r.db.NewSelect().
		Model(&regions).
		Where("?TableAlias.layout_id = ?", layoutID).
		Relation("Playlists", byPosition).
		Relation("Playlists.Widgets", byPosition).
		Relation("Playlists.Widgets.Options", byPosition).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load regions for layout %s: %w", layoutID, err)
	}
	return regions, nil
}

func (r *BunLayoutRepository) Create(ctx context.Context, layout *Layout) (*Layout, error) {
	if r.db == nil {
		return nil, fmt.Errorf("layout repository: database not configured")
	}
	if layout == nil || layout.ID == uuid.Nil {
		return nil, ErrLayoutIDRequired
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(layout).Exec(ctx); err != nil {
			return fmt.Errorf("insert layout: %w", err)
		}
		return insertGraph(ctx, tx, layout)
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (r *BunLayoutRepository) ReplaceGraph(ctx context.Context, layout *Layout) (*Layout, error) {
	if r.db == nil {
		return nil, fmt.Errorf("layout repository: database not configured")
	}
	if layout == nil || layout.ID == uuid.Nil {
		return nil, ErrLayoutIDRequired
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model(layout).
			Column(layoutColumns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update layout: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("layout update rows affected: %w", err)
		}
		if affected == 0 {
			return &NotFoundError{Resource: "layout", Key: layout.ID.String()}
		}

		if err := deleteGraph(ctx, tx, layout.ID); err != nil {
			return err
		}
		return insertGraph(ctx, tx, layout)
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func deleteGraph(ctx context.Context, tx bun.Tx, layoutID uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*WidgetOption)(nil)).
		Where(`?TableAlias.widget_id IN (
			SELECT w.id FROM widgets AS w
			JOIN playlists AS p ON p.id = w.playlist_id
			JOIN regions AS r ON r.id = p.region_id
			WHERE r.layout_id = ?)`, layoutID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete widget options: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Widget)(nil)).
		Where(`?TableAlias.playlist_id IN (
			SELECT p.id FROM playlists AS p
			JOIN regions AS r ON r.id = p.region_id
			WHERE r.layout_id = ?)`, layoutID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete widgets: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Playlist)(nil)).
		Where("?TableAlias.region_id IN (SELECT r.id FROM regions AS r WHERE r.layout_id = ?)", layoutID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete playlists: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Region)(nil)).
		Where("?TableAlias.layout_id = ?", layoutID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete regions: %w", err)
	}
	return nil
}

// insertGraph writes every node below layout. Identifiers and foreign keys
// must already be assigned.
func insertGraph(ctx context.Context, tx bun.Tx, layout *Layout) error {
	var (
		regions   []*Region
		playlists []*Playlist
		widgets   []*Widget
		options   []*WidgetOption
	)
	for _, region := range layout.Regions {
		if region == nil {
			continue
		}
		regions = append(regions, region)
		for _, playlist := range region.Playlists {
			if playlist == nil {
				continue
			}
			playlists = append(playlists, playlist)
			for _, widget := range playlist.Widgets {
				if widget == nil {
					continue
				}
				widgets = append(widgets, widget)
				for _, option := range widget.Options {
					if option != nil {
						options = append(options, option)
					}
				}
			}
		}
	}

	if len(regions) > 0 {
		if _, err := tx.NewInsert().Model(&regions).Exec(ctx); err != nil {
			return fmt.Errorf("insert regions: %w", err)
		}
	}
	if len(playlists) > 0 {
		if _, err := tx.NewInsert().Model(&playlists).Exec(ctx); err != nil {
			return fmt.Errorf("insert playlists: %w", err)
		}
	}
	if len(widgets) > 0 {
		if _, err := tx.NewInsert().Model(&widgets).Exec(ctx); err != nil {
			return fmt.Errorf("insert widgets: %w", err)
		}
	}
	if len(options) > 0 {
		if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
			return fmt.Errorf("insert widget options: %w", err)
		}
	}
	return nil
}

// BunResolutionRepository implements ResolutionRepository with optional caching.
type BunResolutionRepository struct {
	repo repository.Repository[*Resolution]
}

// NewBunResolutionRepository creates a resolution repository without caching.
func NewBunResolutionRepository(db *bun.DB) *BunResolutionRepository {
	return NewBunResolutionRepositoryWithCache(db, nil, nil)
}

// NewBunResolutionRepositoryWithCache creates a resolution repository with caching.
func NewBunResolutionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunResolutionRepository {
	return &BunResolutionRepository{
		repo: wrapWithCache(NewResolutionRepository(db), cacheService, serializer),
	}
}

func (r *BunResolutionRepository) Create(ctx context.Context, resolution *Resolution) (*Resolution, error) {
	record, err := r.repo.Create(ctx, resolution)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunResolutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Resolution, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "resolution", id.String())
	}
	return record, nil
}

func (r *BunResolutionRepository) List(ctx context.Context) ([]*Resolution, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.name ASC")
	}))
	return records, err
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

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
