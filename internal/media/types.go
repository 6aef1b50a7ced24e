package media

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Media is a stored library file referenced by widgets.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:md"`

	ID   uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name string    `bun:"name,notnull" json:"name"`
	// Type is the module type that renders the file, for example "image".
	Type string `bun:"media_type,notnull" json:"type"`
	// StoredAs is the path of the file relative to the library root.
	StoredAs string `bun:"stored_as,notnull" json:"stored_as"`
	// Released media has been processed and can be scheduled.
	Released  bool      `bun:"released,notnull,default:false" json:"released"`
	MD5       string    `bun:"md5" json:"md5,omitempty"`
	FileSize  int64     `bun:"file_size,notnull,default:0" json:"file_size"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
