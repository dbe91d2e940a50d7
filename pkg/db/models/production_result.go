package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// ProductionResult is an append-only report of good/defect quantities for an
// order. The completion aggregator sums every non-canceled row.
type ProductionResult struct {
	ID         uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID                    `gorm:"column:order_id;type:uuid;not null;index"`
	GoodQty    int                          `gorm:"column:good_qty;not null"`
	DefectQty  int                          `gorm:"column:defect_qty;not null;default:0"`
	Status     enums.ProductionResultStatus `gorm:"column:status;type:text;not null;default:'done'"`
	ReportedAt time.Time                    `gorm:"column:reported_at;not null"`
	CreatedAt  time.Time                    `gorm:"column:created_at;autoCreateTime"`
}
