package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
)

// Repository exposes read access to the part master. Master-data writes live
// in a separate system.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByCode(ctx context.Context, code string) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an item repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
