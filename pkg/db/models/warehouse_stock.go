package models

import (
	"time"

	"github.com/google/uuid"
)

// WarehouseStock is the optional parallel (warehouse, item, lot) quantity
// ledger mirrored alongside lot consumption.
type WarehouseStock struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID  uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:ux_warehouse_stocks_triple"`
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_warehouse_stocks_triple"`
	LotID        uuid.UUID `gorm:"column:lot_id;type:uuid;not null;uniqueIndex:ux_warehouse_stocks_triple"`
	Qty          int       `gorm:"column:qty;not null;default:0"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
