package issuance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/events"
	"github.com/YouHyuksoo/HANES-sub001/pkg/metrics"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type harness struct {
	db       *gorm.DB
	service  Service
	lots     LotRepository
	events   *events.Repository
	registry *prometheus.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := "file:issuance_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Item{},
		&models.Lot{},
		&models.IssuanceRecord{},
		&models.WarehouseStock{},
		&models.DomainEvent{},
	))

	eventRepo := events.NewRepository(db)
	lots := NewLotRepository(db)
	registry := prometheus.NewRegistry()

	svc, err := NewService(
		NewRepository(db),
		lots,
		NewStockRepository(db),
		gormTxRunner{db: db},
		events.NewService(eventRepo, nil),
		metrics.NewIssuanceMetrics(registry),
	)
	require.NoError(t, err)

	return &harness{db: db, service: svc, lots: lots, events: eventRepo, registry: registry}
}

func (h *harness) seedItem(t *testing.T) models.Item {
	t.Helper()
	item := models.Item{
		ID:     uuid.New(),
		Code:   "RM-" + uuid.NewString()[:8],
		Name:   "raw material",
		Type:   enums.ItemTypeRawMaterial,
		Unit:   "EA",
		Active: true,
	}
	require.NoError(t, h.db.Create(&item).Error)
	return item
}

func (h *harness) seedLot(t *testing.T, item models.Item, lotNo string, qty int, quality enums.LotQualityStatus, status enums.LotStatus) models.Lot {
	t.Helper()
	lot := models.Lot{
		ID:            uuid.New(),
		ItemID:        item.ID,
		LotNo:         lotNo,
		CurrentQty:    qty,
		QualityStatus: quality,
		Status:        status,
		ReceivedAt:    time.Now(),
	}
	require.NoError(t, h.db.Create(&lot).Error)
	return lot
}

func (h *harness) seedStock(t *testing.T, warehouseID uuid.UUID, item models.Item, lot models.Lot, qty int) models.WarehouseStock {
	t.Helper()
	stock := models.WarehouseStock{
		ID:           uuid.New(),
		WarehouseID:  warehouseID,
		ItemID:       item.ID,
		LotID:        lot.ID,
		Qty:          qty,
		AvailableQty: qty,
	}
	require.NoError(t, h.db.Create(&stock).Error)
	return stock
}

func (h *harness) reloadLot(t *testing.T, id uuid.UUID) models.Lot {
	t.Helper()
	var lot models.Lot
	require.NoError(t, h.db.First(&lot, "id = ?", id).Error)
	return lot
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
	return typed
}

func TestCreateIssuesAndDecrementsLot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-001", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	orderID := uuid.New()

	records, err := h.service.Create(ctx, CreateInput{
		OrderID: &orderID,
		Type:    enums.IssuanceTypeProduction,
		Items:   []ItemInput{{LotID: lot.ID, Qty: 30}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 30, records[0].Qty)
	assert.Equal(t, enums.IssuanceStatusDone, records[0].Status)
	assert.Equal(t, enums.IssuanceTypeProduction, records[0].Type)
	require.NotNil(t, records[0].OrderID)
	assert.Equal(t, orderID, *records[0].OrderID)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Equal(t, 70, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusNormal, reloaded.Status, "partial issue leaves the lot normal")

	recorded, err := h.events.ListForAggregate(records[0].ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, enums.DomainEventIssuanceCreated, recorded[0].EventType)
}

func TestCreateExactDepletionFlipsStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-002", 50, enums.LotQualityStatusPass, enums.LotStatusNormal)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 50}},
	})
	require.NoError(t, err)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Zero(t, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusDepleted, reloaded.Status)
}

func TestCreateInsufficientStockRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-003", 10, enums.LotQualityStatusPass, enums.LotStatusNormal)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 11}},
	})
	typed := requireCode(t, err, pkgerrors.CodeInsufficientStock)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "LOT-003", details["lot_no"])
	assert.Equal(t, 11, details["requested"])
	assert.Equal(t, 10, details["available"])

	reloaded := h.reloadLot(t, lot.ID)
	assert.Equal(t, 10, reloaded.CurrentQty, "rejected issue must not touch the lot")
}

func TestCreatePendingQualityRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-004", 10, enums.LotQualityStatusPending, enums.LotStatusNormal)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 1}},
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateHeldLotRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-005", 10, enums.LotQualityStatusPass, enums.LotStatusHold)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 1}},
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateBatchRollsBackOnPartialFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	good := h.seedLot(t, item, "LOT-006", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	short := h.seedLot(t, item, "LOT-007", 5, enums.LotQualityStatusPass, enums.LotStatusNormal)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{
			{LotID: good.ID, Qty: 40},
			{LotID: short.ID, Qty: 6},
		},
	})
	requireCode(t, err, pkgerrors.CodeInsufficientStock)

	assert.Equal(t, 100, h.reloadLot(t, good.ID).CurrentQty,
		"the first item's decrement must roll back with the batch")

	var count int64
	require.NoError(t, h.db.Model(&models.IssuanceRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateValidationCollectsAllViolations(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, err := h.service.Create(context.Background(), CreateInput{
		Items: []ItemInput{
			{LotID: uuid.Nil, Qty: 0},
			{LotID: uuid.New(), Qty: -1},
		},
	})
	typed := requireCode(t, err, pkgerrors.CodeValidation)
	require.NotNil(t, typed.Unwrap())
	assert.Contains(t, typed.Unwrap().Error(), "items[0]")
	assert.Contains(t, typed.Unwrap().Error(), "items[1]")

	_, err = h.service.Create(context.Background(), CreateInput{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateConsumesWarehouseStockFlooredAtZero(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-008", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	warehouseID := uuid.New()
	stock := h.seedStock(t, warehouseID, item, lot, 20)

	_, err := h.service.Create(context.Background(), CreateInput{
		WarehouseID: &warehouseID,
		Items:       []ItemInput{{LotID: lot.ID, Qty: 30}},
	})
	require.NoError(t, err)

	var reloaded models.WarehouseStock
	require.NoError(t, h.db.First(&reloaded, "id = ?", stock.ID).Error)
	assert.Zero(t, reloaded.Qty, "stock mirror floors at zero instead of going negative")
	assert.Zero(t, reloaded.AvailableQty)

	assert.Equal(t, 70, h.reloadLot(t, lot.ID).CurrentQty, "lot quantity is authoritative")
}

func TestCreateMissingStockRowIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-009", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	warehouseID := uuid.New()

	records, err := h.service.Create(context.Background(), CreateInput{
		WarehouseID: &warehouseID,
		Items:       []ItemInput{{LotID: lot.ID, Qty: 10}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 90, h.reloadLot(t, lot.ID).CurrentQty)
}

func TestScanIssuesFullRemainingQty(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-010", 42, enums.LotQualityStatusPass, enums.LotStatusNormal)

	record, err := h.service.ScanIssue(context.Background(), ScanInput{LotNo: "LOT-010"})
	require.NoError(t, err)
	assert.Equal(t, 42, record.Qty)
	assert.Equal(t, enums.IssuanceTypeScan, record.Type)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Zero(t, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusDepleted, reloaded.Status)
}

func TestScanEmptyLotRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	item := h.seedItem(t)
	h.seedLot(t, item, "LOT-011", 0, enums.LotQualityStatusPass, enums.LotStatusNormal)

	_, err := h.service.ScanIssue(context.Background(), ScanInput{LotNo: "LOT-011"})
	requireCode(t, err, pkgerrors.CodeInsufficientStock)
}

func TestScanUnknownLotNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.service.ScanIssue(context.Background(), ScanInput{LotNo: "LOT-MISSING"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCancelRestoresLotAndStock(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-012", 50, enums.LotQualityStatusPass, enums.LotStatusNormal)
	warehouseID := uuid.New()
	stock := h.seedStock(t, warehouseID, item, lot, 50)

	records, err := h.service.Create(ctx, CreateInput{
		WarehouseID: &warehouseID,
		Items:       []ItemInput{{LotID: lot.ID, Qty: 50}},
	})
	require.NoError(t, err)
	require.Equal(t, enums.LotStatusDepleted, h.reloadLot(t, lot.ID).Status)

	reason := "issued against the wrong order"
	canceled, err := h.service.Cancel(ctx, records[0].ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, enums.IssuanceStatusCanceled, canceled.Status)
	assert.NotNil(t, canceled.CanceledAt)
	require.NotNil(t, canceled.Remark)
	assert.Equal(t, reason, *canceled.Remark)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Equal(t, 50, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusNormal, reloaded.Status, "cancel reopens a depleted lot")

	var reloadedStock models.WarehouseStock
	require.NoError(t, h.db.First(&reloadedStock, "id = ?", stock.ID).Error)
	assert.Equal(t, 50, reloadedStock.Qty)
	assert.Equal(t, 50, reloadedStock.AvailableQty)

	recorded, err := h.events.ListForAggregate(records[0].ID)
	require.NoError(t, err)
	last := recorded[len(recorded)-1]
	assert.Equal(t, enums.DomainEventIssuanceCanceled, last.EventType)
}

func TestCancelReopensHeldLot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-013", 30, enums.LotQualityStatusPass, enums.LotStatusNormal)

	records, err := h.service.Create(ctx, CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 10}},
	})
	require.NoError(t, err)

	// a held lot still comes back normal after a reversal
	require.NoError(t, h.db.Model(&models.Lot{}).
		Where("id = ?", lot.ID).
		Update("status", enums.LotStatusHold).Error)

	_, err = h.service.Cancel(ctx, records[0].ID, nil)
	require.NoError(t, err)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Equal(t, 30, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusNormal, reloaded.Status)
}

func TestCancelTwiceRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-014", 30, enums.LotQualityStatusPass, enums.LotStatusNormal)

	records, err := h.service.Create(ctx, CreateInput{
		Items: []ItemInput{{LotID: lot.ID, Qty: 10}},
	})
	require.NoError(t, err)

	_, err = h.service.Cancel(ctx, records[0].ID, nil)
	require.NoError(t, err)

	_, err = h.service.Cancel(ctx, records[0].ID, nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	assert.Equal(t, 30, h.reloadLot(t, lot.ID).CurrentQty,
		"a second cancel must not restore the quantity twice")
}

func TestListFiltersRecords(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	first := h.seedLot(t, item, "LOT-015", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	second := h.seedLot(t, item, "LOT-016", 100, enums.LotQualityStatusPass, enums.LotStatusNormal)
	orderID := uuid.New()

	_, err := h.service.Create(ctx, CreateInput{
		OrderID: &orderID,
		Items:   []ItemInput{{LotID: first.ID, Qty: 10}},
	})
	require.NoError(t, err)
	_, err = h.service.Create(ctx, CreateInput{
		Items: []ItemInput{{LotID: second.ID, Qty: 10}},
	})
	require.NoError(t, err)

	page, err := h.service.List(ctx, pagination.Params{}, ListFilters{OrderID: &orderID})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, first.ID, page.Records[0].LotID)

	page, err = h.service.List(ctx, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
}

func TestLotRepositoryListFilters(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	h.seedLot(t, item, "LOT-017", 10, enums.LotQualityStatusPass, enums.LotStatusNormal)
	h.seedLot(t, item, "LOT-018", 10, enums.LotQualityStatusPending, enums.LotStatusHold)

	hold := enums.LotStatusHold
	page, err := h.lots.List(ctx, pagination.Params{}, LotFilters{Status: &hold})
	require.NoError(t, err)
	require.Len(t, page.Lots, 1)
	assert.Equal(t, "LOT-018", page.Lots[0].LotNo)

	pass := enums.LotQualityStatusPass
	page, err = h.lots.List(ctx, pagination.Params{}, LotFilters{QualityStatus: &pass})
	require.NoError(t, err)
	require.Len(t, page.Lots, 1)
	assert.Equal(t, "LOT-017", page.Lots[0].LotNo)
}

func TestLotRepositoryConsumeIsGuardedWrite(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)

	// a request larger than what the row currently holds matches nothing,
	// even when the caller believed more was available
	lot := h.seedLot(t, item, "LOT-019", 40, enums.LotQualityStatusPass, enums.LotStatusNormal)
	matched, err := h.lots.Consume(ctx, lot.ID, 60)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, 40, h.reloadLot(t, lot.ID).CurrentQty, "losing consume must not touch the row")

	held := h.seedLot(t, item, "LOT-020", 40, enums.LotQualityStatusPass, enums.LotStatusHold)
	matched, err = h.lots.Consume(ctx, held.ID, 10)
	require.NoError(t, err)
	assert.False(t, matched)

	pending := h.seedLot(t, item, "LOT-021", 40, enums.LotQualityStatusPending, enums.LotStatusNormal)
	matched, err = h.lots.Consume(ctx, pending.ID, 10)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestLotRepositoryConsumeDepletesOnExactZero(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	lot := h.seedLot(t, item, "LOT-022", 25, enums.LotQualityStatusPass, enums.LotStatusNormal)

	matched, err := h.lots.Consume(ctx, lot.ID, 25)
	require.NoError(t, err)
	require.True(t, matched)

	reloaded := h.reloadLot(t, lot.ID)
	assert.Equal(t, 0, reloaded.CurrentQty)
	assert.Equal(t, enums.LotStatusDepleted, reloaded.Status)

	// a depleted lot is out of the issuable set
	matched, err = h.lots.Consume(ctx, lot.ID, 1)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCreateCountsEachIssuedRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	item := h.seedItem(t)
	first := h.seedLot(t, item, "LOT-023", 50, enums.LotQualityStatusPass, enums.LotStatusNormal)
	second := h.seedLot(t, item, "LOT-024", 50, enums.LotQualityStatusPass, enums.LotStatusNormal)

	records, err := h.service.Create(ctx, CreateInput{
		Items: []ItemInput{
			{LotID: first.ID, Qty: 10},
			{LotID: second.ID, Qty: 20},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	families, err := h.registry.Gather()
	require.NoError(t, err)
	var sawIssued bool
	for _, mf := range families {
		if mf.GetName() != "issuance_outcomes_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == "issued" {
					sawIssued = true
					assert.Equal(t, float64(2), metric.GetCounter().GetValue(),
						"one count per ledger row")
				}
			}
		}
	}
	assert.True(t, sawIssued)
}
