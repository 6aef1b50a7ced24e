package modules

import (
	"time"

	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Module is a widget module type installed in the CMS.
type Module struct {
	bun.BaseModel `bun:"table:modules,alias:m"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Type            string    `bun:"module_type,notnull,unique" json:"type"`
	Name            string    `bun:"name,notnull" json:"name"`
	RegionSpecific  bool      `bun:"region_specific,notnull" json:"region_specific"`
	ImageProcessing bool      `bun:"image_processing,notnull" json:"image_processing"`
	DefaultDuration int       `bun:"default_duration,notnull,default:0" json:"default_duration"`
	Enabled         bool      `bun:"enabled,notnull" json:"enabled"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Capabilities returns the resolver view of the module.
func (m Module) Capabilities() interfaces.ModuleCapabilities {
	return interfaces.ModuleCapabilities{
		Type:            canonicalKey(m.Type),
		RegionSpecific:  m.RegionSpecific,
		ImageProcessing: m.ImageProcessing,
		DefaultDuration: m.DefaultDuration,
	}
}
