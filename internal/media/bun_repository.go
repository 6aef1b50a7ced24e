package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository. Media rows change on every release
// and are not cached.
type BunRepository struct {
	repo repository.Repository[*Media]
	now  func() time.Time
}

// NewBunRepository creates a media repository backed by bun.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		repo: NewMediaRepository(db),
		now:  time.Now,
	}
}

func (r *BunRepository) Create(ctx context.Context, item *Media) (*Media, error) {
	record, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Media, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) ListUnreleased(ctx context.Context, types []string) ([]*Media, error) {
	normalized := normalizeTypes(types)
	if len(normalized) == 0 {
		return []*Media{}, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.released = ?", false)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.media_type) IN (?)", bun.In(normalized))
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("list unreleased media: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Release(ctx context.Context, id uuid.UUID, hash string, size int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	record := &Media{
		ID:        id,
		Released:  true,
		MD5:       hash,
		FileSize:  size,
		UpdatedAt: r.now(),
	}
	if _, err := r.repo.Update(ctx, record,
		repository.UpdateByID(id.String()),
		repository.UpdateColumns("released", "md5", "file_size", "updated_at"),
	); err != nil {
		return fmt.Errorf("release media %s: %w", id, err)
	}
	return nil
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, kind := range types {
		if trimmed := strings.ToLower(strings.TrimSpace(kind)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("media repository error: %w", err)
}
