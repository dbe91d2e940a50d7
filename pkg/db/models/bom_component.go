package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMComponent is one parent→child composition line with its per-unit
// quantity ratio.
type BOMComponent struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ParentItemID uuid.UUID       `gorm:"column:parent_item_id;type:uuid;not null;uniqueIndex:ux_bom_parent_child"`
	ChildItemID  uuid.UUID       `gorm:"column:child_item_id;type:uuid;not null;uniqueIndex:ux_bom_parent_child"`
	QuantityPer  decimal.Decimal `gorm:"column:quantity_per;type:numeric(12,4);not null"`
	Sequence     int             `gorm:"column:sequence;not null;default:0"`
	Active       bool            `gorm:"column:active;not null;default:true"`
	ChildItem    *Item           `gorm:"foreignKey:ChildItemID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
