package issuance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/events"
	"github.com/YouHyuksoo/HANES-sub001/pkg/metrics"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

const (
	outcomeIssued   = "issued"
	outcomeRejected = "rejected"
	outcomeCanceled = "canceled"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event events.DomainEvent) error
}

// Service is the material lot issuance engine. It is the only writer of lot
// current quantity and lot status after receipt.
type Service interface {
	Create(ctx context.Context, input CreateInput) ([]models.IssuanceRecord, error)
	ScanIssue(ctx context.Context, input ScanInput) (*models.IssuanceRecord, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (*models.IssuanceRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.IssuanceRecord, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error)
}

type service struct {
	records Repository
	lots    LotRepository
	stocks  StockRepository
	tx      txRunner
	events  eventEmitter
	metrics *metrics.IssuanceMetrics
}

// NewService builds the issuance engine with the required dependencies.
func NewService(
	records Repository,
	lots LotRepository,
	stocks StockRepository,
	tx txRunner,
	emitter eventEmitter,
	issuanceMetrics *metrics.IssuanceMetrics,
) (Service, error) {
	if records == nil {
		return nil, fmt.Errorf("issuance repository required")
	}
	if lots == nil {
		return nil, fmt.Errorf("lot repository required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		records: records,
		lots:    lots,
		stocks:  stocks,
		tx:      tx,
		events:  emitter,
		metrics: issuanceMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) ([]models.IssuanceRecord, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	issuanceType := input.Type
	if issuanceType == "" {
		issuanceType = enums.IssuanceTypeManual
	}

	var created []models.IssuanceRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created = created[:0]
		for _, item := range input.Items {
			record, err := s.issueOne(ctx, tx, issueRequest{
				lotID:       item.LotID,
				qty:         item.Qty,
				orderID:     input.OrderID,
				warehouseID: input.WarehouseID,
				remark:      input.Remark,
				issueType:   issuanceType,
			})
			if err != nil {
				return err
			}
			created = append(created, *record)
		}
		return nil
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}
	s.metrics.AddOutcome(outcomeIssued, len(created))
	return created, nil
}

func (s *service) ScanIssue(ctx context.Context, input ScanInput) (*models.IssuanceRecord, error) {
	if input.LotNo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot no required")
	}

	var created *models.IssuanceRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.lots.WithTx(tx).FindByLotNo(ctx, input.LotNo)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found").
					WithDetails(map[string]any{"lot_no": input.LotNo})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
		}

		record, err := s.issueOne(ctx, tx, issueRequest{
			lotID:       lot.ID,
			qty:         lot.CurrentQty,
			orderID:     input.OrderID,
			warehouseID: input.WarehouseID,
			issueType:   enums.IssuanceTypeScan,
		})
		if err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}
	s.metrics.IncOutcome(outcomeIssued)
	return created, nil
}

type issueRequest struct {
	lotID       uuid.UUID
	qty         int
	orderID     *uuid.UUID
	warehouseID *uuid.UUID
	remark      *string
	issueType   enums.IssuanceType
}

// issueOne applies the quality, hold and quantity gates to a single lot and
// writes one ledger entry. It must run inside the caller's transaction.
func (s *service) issueOne(ctx context.Context, tx *gorm.DB, req issueRequest) (*models.IssuanceRecord, error) {
	lots := s.lots.WithTx(tx)

	lot, err := lots.FindByID(ctx, req.lotID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found").
				WithDetails(map[string]any{"lot_id": req.lotID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
	}

	if req.qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "lot has no remaining quantity").
			WithDetails(map[string]any{
				"lot_no":    lot.LotNo,
				"requested": req.qty,
				"available": lot.CurrentQty,
			})
	}

	// the gate and the decrement are one conditional statement; on a zero-row
	// match the fresh row tells us which gate closed
	matched, err := lots.Consume(ctx, lot.ID, req.qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lot quantity")
	}
	if !matched {
		fresh, err := lots.FindByID(ctx, lot.ID)
		if err != nil {
			if IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found").
					WithDetails(map[string]any{"lot_id": req.lotID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
		}
		return nil, lotGateError(fresh, req.qty)
	}

	if req.warehouseID != nil {
		err := s.stocks.WithTx(tx).Consume(ctx, *req.warehouseID, lot.ItemID, lot.ID, req.qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume warehouse stock")
		}
	}

	record, err := s.records.WithTx(tx).Append(ctx, &models.IssuanceRecord{
		LotID:       lot.ID,
		OrderID:     req.orderID,
		WarehouseID: req.warehouseID,
		Qty:         req.qty,
		Type:        req.issueType,
		Status:      enums.IssuanceStatusDone,
		Remark:      req.remark,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append issuance record")
	}

	event := events.DomainEvent{
		EventType:     enums.DomainEventIssuanceCreated,
		AggregateType: enums.DomainAggregateIssuance,
		AggregateID:   record.ID,
		Version:       1,
		Data: IssuedEvent{
			RecordID: record.ID,
			LotID:    lot.ID,
			LotNo:    lot.LotNo,
			OrderID:  req.orderID,
			Qty:      req.qty,
			Type:     req.issueType,
		},
	}
	if err := s.events.Emit(ctx, tx, event); err != nil {
		return nil, err
	}
	return record, nil
}

// lotGateError maps a lot that failed the conditional consume to the gate
// that closed: quality first, then hold, then quantity.
func lotGateError(lot *models.Lot, qty int) error {
	if lot.QualityStatus != enums.LotQualityStatusPass {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "lot has not passed quality inspection").
			WithDetails(map[string]any{
				"lot_no":         lot.LotNo,
				"quality_status": lot.QualityStatus,
			})
	}
	if lot.Status == enums.LotStatusHold {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "lot is on hold").
			WithDetails(map[string]any{"lot_no": lot.LotNo})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "lot quantity insufficient").
		WithDetails(map[string]any{
			"lot_no":    lot.LotNo,
			"requested": qty,
			"available": lot.CurrentQty,
		})
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*models.IssuanceRecord, error) {
	var result *models.IssuanceRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)
		lots := s.lots.WithTx(tx)

		record, err := records.FindByID(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "issuance record not found").
					WithDetails(map[string]any{"record_id": id})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load issuance record")
		}
		lot, err := lots.FindByID(ctx, record.LotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot")
		}

		now := time.Now()
		recordUpdates := map[string]any{
			"status":      enums.IssuanceStatusCanceled,
			"canceled_at": now,
		}
		if reason != nil {
			recordUpdates["remark"] = *reason
		}
		// the flip is conditioned on the record still being done, so a second
		// cancel matches zero rows and never restores twice
		matched, err := records.UpdateFieldsWhereStatus(ctx, record.ID, enums.IssuanceStatusDone, recordUpdates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel issuance record")
		}
		if !matched {
			fresh, err := records.FindByID(ctx, record.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load issuance record")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "issuance is already canceled").
				WithDetails(map[string]any{
					"record_id": fresh.ID,
					"current":   fresh.Status,
				})
		}
		if reason != nil {
			record.Remark = reason
		}
		record.Status = enums.IssuanceStatusCanceled
		record.CanceledAt = &now

		// the reversal always reopens the lot, including held lots
		if err := lots.UpdateFields(ctx, lot.ID, map[string]any{
			"current_qty": gorm.Expr("current_qty + ?", record.Qty),
			"status":      enums.LotStatusNormal,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore lot quantity")
		}

		if record.WarehouseID != nil {
			err := s.stocks.WithTx(tx).Restore(ctx, *record.WarehouseID, lot.ItemID, lot.ID, record.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore warehouse stock")
			}
		}

		event := events.DomainEvent{
			EventType:     enums.DomainEventIssuanceCanceled,
			AggregateType: enums.DomainAggregateIssuance,
			AggregateID:   record.ID,
			Version:       1,
			Data: CanceledEvent{
				RecordID: record.ID,
				LotID:    lot.ID,
				LotNo:    lot.LotNo,
				Qty:      record.Qty,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOutcome(outcomeCanceled)
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.IssuanceRecord, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issuance record not found").
				WithDetails(map[string]any{"record_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load issuance record")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error) {
	page, err := s.records.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list issuance records")
	}
	return page, nil
}

// validateCreate collects every request-shape violation before touching
// storage so the caller sees all of them at once.
func validateCreate(input CreateInput) error {
	var combined error
	if len(input.Items) == 0 {
		combined = multierr.Append(combined, fmt.Errorf("at least one item is required"))
	}
	for i, item := range input.Items {
		if item.LotID == uuid.Nil {
			combined = multierr.Append(combined, fmt.Errorf("items[%d]: lot id required", i))
		}
		if item.Qty <= 0 {
			combined = multierr.Append(combined, fmt.Errorf("items[%d]: qty must be positive", i))
		}
	}
	if input.Type != "" && !input.Type.IsValid() {
		combined = multierr.Append(combined, fmt.Errorf("unknown issuance type %q", input.Type))
	}
	if combined != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "invalid issuance request")
	}
	return nil
}

func (s *service) countFailure(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return
	}
	switch typed.Code() {
	case pkgerrors.CodeStateConflict, pkgerrors.CodeInsufficientStock:
		s.metrics.IncOutcome(outcomeRejected)
	}
}
