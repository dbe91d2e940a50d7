package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/api/responses"
	"github.com/YouHyuksoo/HANES-sub001/api/validators"
	"github.com/YouHyuksoo/HANES-sub001/internal/production"
	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/logger"
)

type createProductionResultRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	GoodQty   int       `json:"good_qty" validate:"min=0"`
	DefectQty int       `json:"defect_qty" validate:"min=0"`
}

func ProductionResultCreate(repo production.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductionResultRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.GoodQty == 0 && req.DefectQty == 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "result must report at least one unit"))
			return
		}

		result, err := repo.Append(r.Context(), &models.ProductionResult{
			OrderID:   req.OrderID,
			GoodQty:   req.GoodQty,
			DefectQty: req.DefectQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append production result"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ProductionResultList(repo production.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orderID == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "order_id query parameter is required"))
			return
		}

		results, err := repo.ListForOrder(r.Context(), *orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list production results"))
			return
		}
		responses.WriteSuccess(w, results)
	}
}
