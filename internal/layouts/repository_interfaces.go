package layouts

import (
	"context"

	"github.com/google/uuid"
)

// LayoutRepository persists layout rows and their normalized region graph.
type LayoutRepository interface {
	// GetByID returns the layout row without its regions.
	GetByID(ctx context.Context, id uuid.UUID) (*Layout, error)
	// LoadRegions returns the ordered region/playlist/widget/option graph of a layout.
	LoadRegions(ctx context.Context, layoutID uuid.UUID) ([]*Region, error)
	// Create inserts the row and its whole graph atomically.
	Create(ctx context.Context, layout *Layout) (*Layout, error)
	// ReplaceGraph updates the row and swaps its graph atomically.
	ReplaceGraph(ctx context.Context, layout *Layout) (*Layout, error)
}

// ResolutionRepository exposes resolution lookups.
type ResolutionRepository interface {
	Create(ctx context.Context, resolution *Resolution) (*Resolution, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Resolution, error)
	List(ctx context.Context) ([]*Resolution, error)
}
