package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// Item is a part-master row. The MES owns reads only; master-data CRUD
// lives in a separate system.
type Item struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Code      string         `gorm:"column:code;not null;uniqueIndex:ux_items_code"`
	Name      string         `gorm:"column:name;not null"`
	Type      enums.ItemType `gorm:"column:type;type:text;not null"`
	Unit      string         `gorm:"column:unit;not null;default:'EA'"`
	Active    bool           `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
