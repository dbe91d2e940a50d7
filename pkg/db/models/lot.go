package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// Lot is a traceable batch of received material. CurrentQty and Status are
// written only by the issuance engine after receipt.
type Lot struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ItemID        uuid.UUID              `gorm:"column:item_id;type:uuid;not null;index"`
	LotNo         string                 `gorm:"column:lot_no;not null;uniqueIndex:ux_lots_lot_no"`
	CurrentQty    int                    `gorm:"column:current_qty;not null;default:0"`
	QualityStatus enums.LotQualityStatus `gorm:"column:quality_status;type:text;not null;default:'pending'"`
	Status        enums.LotStatus        `gorm:"column:status;type:text;not null;default:'normal'"`
	ReceivedAt    time.Time              `gorm:"column:received_at;not null"`
	Item          *Item                  `gorm:"foreignKey:ItemID"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
