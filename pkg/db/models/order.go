package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// Order is a discrete work order. Child orders reference their parent
// through ParentOrderID; the hierarchy is a flat collection traversed by
// key lookups. GoodQty/DefectQty stay nil until completion writes them.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNo       string            `gorm:"column:order_no;not null;uniqueIndex:ux_orders_order_no"`
	ItemID        uuid.UUID         `gorm:"column:item_id;type:uuid;not null"`
	ParentOrderID *uuid.UUID        `gorm:"column:parent_order_id;type:uuid;index"`
	PlanQty       int               `gorm:"column:plan_qty;not null"`
	GoodQty       *int              `gorm:"column:good_qty"`
	DefectQty     *int              `gorm:"column:defect_qty"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'waiting'"`
	PlanDate      time.Time         `gorm:"column:plan_date;not null"`
	Priority      int               `gorm:"column:priority;not null;default:0"`
	Remark        *string           `gorm:"column:remark"`
	StartedAt     *time.Time        `gorm:"column:started_at"`
	EndedAt       *time.Time        `gorm:"column:ended_at"`
	Item          *Item             `gorm:"foreignKey:ItemID"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
