package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/api/responses"
	"github.com/YouHyuksoo/HANES-sub001/api/validators"
	"github.com/YouHyuksoo/HANES-sub001/internal/issuance"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/logger"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

func LotDetail(lots issuance.LotRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "lotId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lot id is required"))
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lot id"))
			return
		}

		lot, err := lots.FindByID(r.Context(), id)
		if err != nil {
			if issuance.IsNotFound(err) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeNotFound, "lot not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lot"))
			return
		}
		responses.WriteSuccess(w, lot)
	}
}

func LotList(lots issuance.LotRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := issuance.LotFilters{}
		filters.ItemID, err = validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, err := enums.ParseLotStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := validators.ParseQueryString(r, "quality_status"); raw != "" {
			quality, err := enums.ParseLotQualityStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quality status filter"))
				return
			}
			filters.QualityStatus = &quality
		}

		page, err := lots.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lots"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}
