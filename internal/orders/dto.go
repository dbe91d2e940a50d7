package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// CreateInput carries the data required to register a work order.
type CreateInput struct {
	OrderNo    string
	ItemCode   string
	PlanQty    int
	PlanDate   time.Time
	Priority   int
	Remark     *string
	AutoExpand bool
}

// UpdateInput carries the mutable fields of a not-yet-finalized order.
// Nil pointers leave the column untouched.
type UpdateInput struct {
	PlanQty  *int
	PlanDate *time.Time
	Priority *int
	Remark   *string
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status        *enums.OrderStatus
	ItemID        *uuid.UUID
	ParentOrderID *uuid.UUID
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

// CreatedEvent is recorded when an order is registered.
type CreatedEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	OrderNo       string     `json:"order_no"`
	ItemID        uuid.UUID  `json:"item_id"`
	ParentOrderID *uuid.UUID `json:"parent_order_id,omitempty"`
	PlanQty       int        `json:"plan_qty"`
}

// TransitionEvent is recorded on every lifecycle transition.
type TransitionEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	OrderNo   string            `json:"order_no"`
	From      enums.OrderStatus `json:"from"`
	To        enums.OrderStatus `json:"to"`
	GoodQty   *int              `json:"good_qty,omitempty"`
	DefectQty *int              `json:"defect_qty,omitempty"`
}
