package issuance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

// LotRepository reads lots and writes the two fields the engine owns:
// current quantity and lot status.
type LotRepository interface {
	WithTx(tx *gorm.DB) LotRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lot, error)
	FindByLotNo(ctx context.Context, lotNo string) (*models.Lot, error)
	Consume(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, filters LotFilters) (*LotPage, error)
}

type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository builds the gorm-backed lot repository.
func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) WithTx(tx *gorm.DB) LotRepository {
	if tx == nil {
		return r
	}
	return &lotRepository{db: tx}
}

func (r *lotRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Lot, error) {
	var lot models.Lot
	err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) FindByLotNo(ctx context.Context, lotNo string) (*models.Lot, error) {
	var lot models.Lot
	err := r.db.WithContext(ctx).First(&lot, "lot_no = ?", lotNo).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// Consume decrements current quantity in one statement whose WHERE clause is
// the full issuance gate: the lot must be normal, quality-passed and hold at
// least qty. A decrement that lands on zero marks the lot depleted in the
// same write. Reports whether a row matched.
func (r *lotRepository) Consume(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Where(
			"id = ? AND status = ? AND quality_status = ? AND current_qty >= ?",
			id, enums.LotStatusNormal, enums.LotQualityStatusPass, qty,
		).
		Updates(map[string]any{
			"current_qty": gorm.Expr("current_qty - ?", qty),
			"status": gorm.Expr(
				"CASE WHEN current_qty - ? = 0 THEN ? ELSE status END",
				qty, enums.LotStatusDepleted,
			),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *lotRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lotRepository) List(ctx context.Context, params pagination.Params, filters LotFilters) (*LotPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Lot{})

	if filters.ItemID != nil {
		query = query.Where("item_id = ?", *filters.ItemID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.QualityStatus != nil {
		query = query.Where("quality_status = ?", *filters.QualityStatus)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Lot
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page := &LotPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Lots = rows
	return page, nil
}
