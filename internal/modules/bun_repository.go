package modules

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunModuleRepository implements ModuleRepository with optional caching.
type BunModuleRepository struct {
	repo repository.Repository[*Module]
}

// NewBunModuleRepository creates a module repository without caching.
func NewBunModuleRepository(db *bun.DB) *BunModuleRepository {
	return NewBunModuleRepositoryWithCache(db, nil, nil)
}

// NewBunModuleRepositoryWithCache creates a module repository with caching.
func NewBunModuleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunModuleRepository {
	base := NewModuleRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunModuleRepository{repo: base}
}

func (r *BunModuleRepository) Create(ctx context.Context, module *Module) (*Module, error) {
	if module == nil {
		return nil, fmt.Errorf("modules: module is nil")
	}
	module.Type = canonicalKey(module.Type)
	existing, err := r.GetByType(ctx, module.Type)
	if err == nil && existing != nil {
		return nil, ErrModuleExists
	}
	var nf *NotFoundError
	if err != nil && !errors.As(err, &nf) {
		return nil, err
	}
	record, err := r.repo.Create(ctx, module)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunModuleRepository) GetByType(ctx context.Context, moduleType string) (*Module, error) {
	key := canonicalKey(moduleType)
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, key)
	}
	return record, nil
}

func (r *BunModuleRepository) List(ctx context.Context) ([]*Module, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.module_type ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("module repository error: %w", err)
}
