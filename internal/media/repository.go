package media

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository exposes the media queries used by library maintenance.
type Repository interface {
	Create(ctx context.Context, item *Media) (*Media, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Media, error)
	// ListUnreleased returns unreleased media of the given module types in
	// creation order. An empty type list matches nothing.
	ListUnreleased(ctx context.Context, types []string) ([]*Media, error)
	// Release records the final hash and size of an item and marks it released.
	Release(ctx context.Context, id uuid.UUID, hash string, size int64) error
}

// NotFoundError is returned when a media item cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("media %q not found", e.Key)
}

// NewMediaRepository creates a go-repository-bun repository for media rows.
func NewMediaRepository(db *bun.DB) repository.Repository[*Media] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Media]{
		NewRecord:          func() *Media { return &Media{} },
		GetID:              func(m *Media) uuid.UUID { return m.ID },
		SetID:              func(m *Media, id uuid.UUID) { m.ID = id },
		GetIdentifier:      func() string { return "stored_as" },
		GetIdentifierValue: func(m *Media) string { return m.StoredAs },
	})
}
