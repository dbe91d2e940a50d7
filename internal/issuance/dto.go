package issuance

import (
	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// ItemInput is one lot/quantity pair inside a batch issuance request.
type ItemInput struct {
	LotID uuid.UUID
	Qty   int
}

// CreateInput carries a batch issuance request. All items issue inside one
// transaction or none do.
type CreateInput struct {
	OrderID     *uuid.UUID
	WarehouseID *uuid.UUID
	Type        enums.IssuanceType
	Remark      *string
	Items       []ItemInput
}

// ScanInput issues the full remaining quantity of one lot resolved by lot no.
type ScanInput struct {
	LotNo       string
	OrderID     *uuid.UUID
	WarehouseID *uuid.UUID
}

// ListFilters narrows issuance record listings.
type ListFilters struct {
	LotID   *uuid.UUID
	OrderID *uuid.UUID
	Status  *enums.IssuanceStatus
}

// Page is one cursor page of issuance records.
type Page struct {
	Records    []models.IssuanceRecord `json:"records"`
	NextCursor *string                 `json:"next_cursor,omitempty"`
}

// LotFilters narrows lot listings for the read API.
type LotFilters struct {
	ItemID        *uuid.UUID
	Status        *enums.LotStatus
	QualityStatus *enums.LotQualityStatus
}

// LotPage is one cursor page of lots.
type LotPage struct {
	Lots       []models.Lot `json:"lots"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// IssuedEvent is recorded per issuance record created.
type IssuedEvent struct {
	RecordID uuid.UUID          `json:"record_id"`
	LotID    uuid.UUID          `json:"lot_id"`
	LotNo    string             `json:"lot_no"`
	OrderID  *uuid.UUID         `json:"order_id,omitempty"`
	Qty      int                `json:"qty"`
	Type     enums.IssuanceType `json:"type"`
}

// CanceledEvent is recorded when an issuance is reversed.
type CanceledEvent struct {
	RecordID uuid.UUID `json:"record_id"`
	LotID    uuid.UUID `json:"lot_id"`
	LotNo    string    `json:"lot_no"`
	Qty      int       `json:"qty"`
}
