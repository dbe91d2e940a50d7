package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// Totals holds the aggregated quantities of every non-canceled result row
// for one order.
type Totals struct {
	GoodQty   int
	DefectQty int
}

// Repository stores production result reports. Rows are append-only; the
// completion aggregator only ever reads sums.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, result *models.ProductionResult) (*models.ProductionResult, error)
	SumForOrder(ctx context.Context, orderID uuid.UUID) (Totals, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProductionResult, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a production result repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, result *models.ProductionResult) (*models.ProductionResult, error) {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.Status == "" {
		result.Status = enums.ProductionResultStatusDone
	}
	if result.ReportedAt.IsZero() {
		result.ReportedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) SumForOrder(ctx context.Context, orderID uuid.UUID) (Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.ProductionResult{}).
		Select("COALESCE(SUM(good_qty), 0) AS good_qty, COALESCE(SUM(defect_qty), 0) AS defect_qty").
		Where("order_id = ?", orderID).
		Where("status <> ?", enums.ProductionResultStatusCanceled).
		Scan(&totals).Error
	if err != nil {
		return Totals{}, err
	}
	return totals, nil
}

func (r *repository) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProductionResult, error) {
	var rows []models.ProductionResult
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("reported_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
