package layouts

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewLayoutRowRepository creates a repository for layout rows.
func NewLayoutRowRepository(db *bun.DB) repository.Repository[*Layout] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Layout]{
		NewRecord:          func() *Layout { return &Layout{} },
		GetID:              func(l *Layout) uuid.UUID { return l.ID },
		SetID:              func(l *Layout, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(l *Layout) string { return l.ID.String() },
	})
}

// NewResolutionRepository creates a repository for resolutions.
func NewResolutionRepository(db *bun.DB) repository.Repository[*Resolution] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Resolution]{
		NewRecord:          func() *Resolution { return &Resolution{} },
		GetID:              func(r *Resolution) uuid.UUID { return r.ID },
		SetID:              func(r *Resolution, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(r *Resolution) string { return r.Name },
	})
}
