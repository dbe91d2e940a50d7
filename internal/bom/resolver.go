package bom

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// Resolver is the read-only lookup of parent→child item composition. The
// lifecycle controller consumes ActiveWIPComponents when expanding a parent
// order; everything else reads Components.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	Components(ctx context.Context, parentItemID uuid.UUID) ([]models.BOMComponent, error)
	ActiveWIPComponents(ctx context.Context, parentItemID uuid.UUID) ([]models.BOMComponent, error)
}

type resolver struct {
	db *gorm.DB
}

// NewResolver builds a BOM resolver bound to the provided DB.
func NewResolver(db *gorm.DB) Resolver {
	return &resolver{db: db}
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	if tx == nil {
		return r
	}
	return &resolver{db: tx}
}

func (r *resolver) Components(ctx context.Context, parentItemID uuid.UUID) ([]models.BOMComponent, error) {
	var rows []models.BOMComponent
	err := r.db.WithContext(ctx).
		Preload("ChildItem").
		Where("parent_item_id = ?", parentItemID).
		Order("sequence ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveWIPComponents returns the active work-in-process lines only. Lines
// of any other item type never spawn child orders.
func (r *resolver) ActiveWIPComponents(ctx context.Context, parentItemID uuid.UUID) ([]models.BOMComponent, error) {
	rows, err := r.Components(ctx, parentItemID)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.BOMComponent, 0, len(rows))
	for _, row := range rows {
		if !row.Active {
			continue
		}
		if row.ChildItem == nil || row.ChildItem.Type != enums.ItemTypeWorkInProcess {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}
