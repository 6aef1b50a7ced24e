package displays

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MediaInventoryPending is the inventory status a display is moved to when
// it must download changed media.
const MediaInventoryPending = 3

// Schedule plays a layout on one or more display groups.
type Schedule struct {
	bun.BaseModel `bun:"table:schedules,alias:sch"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name     string    `bun:"name,notnull" json:"name"`
	LayoutID uuid.UUID `bun:"layout_id,notnull,type:uuid" json:"layout_id"`
}

// DisplayGroup is a named set of displays targeted by schedules.
type DisplayGroup struct {
	bun.BaseModel `bun:"table:display_groups,alias:dg"`

	ID   uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name string    `bun:"name,notnull" json:"name"`
}

// Display is a player device.
type Display struct {
	bun.BaseModel `bun:"table:displays,alias:d"`

	ID                   uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name                 string     `bun:"name,notnull" json:"name"`
	MediaInventoryStatus int        `bun:"media_inventory_status,notnull,default:0" json:"media_inventory_status"`
	NotifiedAt           *time.Time `bun:"notified_at" json:"notified_at,omitempty"`
}

// ScheduleDisplayGroup links a schedule to a display group.
type ScheduleDisplayGroup struct {
	bun.BaseModel `bun:"table:schedule_display_groups,alias:sdg"`

	ScheduleID     uuid.UUID `bun:"schedule_id,pk,type:uuid"`
	DisplayGroupID uuid.UUID `bun:"display_group_id,pk,type:uuid"`
}

// DisplayGroupMember links a display to a display group.
type DisplayGroupMember struct {
	bun.BaseModel `bun:"table:display_group_members,alias:dgm"`

	DisplayGroupID uuid.UUID `bun:"display_group_id,pk,type:uuid"`
	DisplayID      uuid.UUID `bun:"display_id,pk,type:uuid"`
}
