package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// IssuanceRecord is one append-only ledger entry of lot quantity consumed
// against a production need. Cancel flips Status and restores the lot; rows
// are never deleted.
type IssuanceRecord struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	LotID       uuid.UUID            `gorm:"column:lot_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID           `gorm:"column:order_id;type:uuid;index"`
	WarehouseID *uuid.UUID           `gorm:"column:warehouse_id;type:uuid"`
	Qty         int                  `gorm:"column:qty;not null"`
	Type        enums.IssuanceType   `gorm:"column:type;type:text;not null"`
	Status      enums.IssuanceStatus `gorm:"column:status;type:text;not null;default:'done'"`
	Remark      *string              `gorm:"column:remark"`
	CanceledAt  *time.Time           `gorm:"column:canceled_at"`
	Lot         *Lot                 `gorm:"foreignKey:LotID"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
