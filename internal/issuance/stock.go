package issuance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
)

// StockRepository mirrors lot consumption into the optional per-warehouse
// quantity ledger. A missing row is not an error; the mirror is best-effort.
type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository
	Find(ctx context.Context, warehouseID, itemID, lotID uuid.UUID) (*models.WarehouseStock, error)
	Consume(ctx context.Context, warehouseID, itemID, lotID uuid.UUID, qty int) error
	Restore(ctx context.Context, warehouseID, itemID, lotID uuid.UUID, qty int) error
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository builds the gorm-backed warehouse stock repository.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	if tx == nil {
		return r
	}
	return &stockRepository{db: tx}
}

func (r *stockRepository) Find(ctx context.Context, warehouseID, itemID, lotID uuid.UUID) (*models.WarehouseStock, error) {
	var stock models.WarehouseStock
	err := r.db.WithContext(ctx).
		First(&stock, "warehouse_id = ? AND item_id = ? AND lot_id = ?", warehouseID, itemID, lotID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// Consume subtracts qty from the stock row in one statement, flooring both
// quantities at zero. A missing row matches nothing and is a no-op.
func (r *stockRepository) Consume(ctx context.Context, warehouseID, itemID, lotID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.WarehouseStock{}).
		Where("warehouse_id = ? AND item_id = ? AND lot_id = ?", warehouseID, itemID, lotID).
		Updates(map[string]any{
			"qty":           gorm.Expr("CASE WHEN qty - ? < 0 THEN 0 ELSE qty - ? END", qty, qty),
			"available_qty": gorm.Expr("CASE WHEN available_qty - ? < 0 THEN 0 ELSE available_qty - ? END", qty, qty),
		}).Error
}

// Restore adds qty back to the stock row. No-op when the row does not exist.
func (r *stockRepository) Restore(ctx context.Context, warehouseID, itemID, lotID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.WarehouseStock{}).
		Where("warehouse_id = ? AND item_id = ? AND lot_id = ?", warehouseID, itemID, lotID).
		Updates(map[string]any{
			"qty":           gorm.Expr("qty + ?", qty),
			"available_qty": gorm.Expr("available_qty + ?", qty),
		}).Error
}
