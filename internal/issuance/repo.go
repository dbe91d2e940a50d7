package issuance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

// Repository persists the append-only issuance ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, record *models.IssuanceRecord) (*models.IssuanceRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.IssuanceRecord, error)
	UpdateFieldsWhereStatus(ctx context.Context, id uuid.UUID, current enums.IssuanceStatus, updates map[string]any) (bool, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed issuance repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, record *models.IssuanceRecord) (*models.IssuanceRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = enums.IssuanceStatusDone
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.IssuanceRecord, error) {
	var record models.IssuanceRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateFieldsWhereStatus applies updates only while the record still holds
// the given status, so a concurrent cancel of the same record matches zero
// rows. Reports whether a row matched.
func (r *repository) UpdateFieldsWhereStatus(ctx context.Context, id uuid.UUID, current enums.IssuanceStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.IssuanceRecord{}).
		Where("id = ? AND status = ?", id, current).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error) {
	query := r.db.WithContext(ctx).Model(&models.IssuanceRecord{})

	if filters.LotID != nil {
		query = query.Where("lot_id = ?", *filters.LotID)
	}
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
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
	var rows []models.IssuanceRecord
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page := &Page{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Records = rows
	return page, nil
}

// IsNotFound reports whether err means the requested row is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
