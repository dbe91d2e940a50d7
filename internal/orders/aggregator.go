package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/internal/production"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
)

// Aggregator sums production results at completion time. It runs only
// inside the completion transaction; the sum commits together with the
// status-conditioned finalize write, and a concurrent complete matches zero
// rows on that write instead of double-aggregating.
type Aggregator struct {
	results production.Repository
}

// NewAggregator builds a completion aggregator over the production result store.
func NewAggregator(results production.Repository) *Aggregator {
	return &Aggregator{results: results}
}

// Totals returns the good/defect sums of every non-canceled result for the
// order, read through the caller's transaction.
func (a *Aggregator) Totals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (production.Totals, error) {
	totals, err := a.results.WithTx(tx).SumForOrder(ctx, orderID)
	if err != nil {
		return production.Totals{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate production results")
	}
	return totals, nil
}
