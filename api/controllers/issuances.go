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

type issuanceItemRequest struct {
	LotID uuid.UUID `json:"lot_id" validate:"required"`
	Qty   int       `json:"qty" validate:"required,gt=0"`
}

type createIssuanceRequest struct {
	OrderID     *uuid.UUID            `json:"order_id,omitempty"`
	WarehouseID *uuid.UUID            `json:"warehouse_id,omitempty"`
	Type        string                `json:"type,omitempty" validate:"omitempty,oneof=production scan manual"`
	Remark      *string               `json:"remark,omitempty"`
	Items       []issuanceItemRequest `json:"items" validate:"required,min=1,dive"`
}

type scanIssuanceRequest struct {
	LotNo       string     `json:"lot_no" validate:"required"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
}

type cancelIssuanceRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func IssuanceCreate(svc issuance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createIssuanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]issuance.ItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, issuance.ItemInput{LotID: item.LotID, Qty: item.Qty})
		}

		records, err := svc.Create(r.Context(), issuance.CreateInput{
			OrderID:     req.OrderID,
			WarehouseID: req.WarehouseID,
			Type:        enums.IssuanceType(req.Type),
			Remark:      req.Remark,
			Items:       items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, records)
	}
}

func IssuanceScan(svc issuance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanIssuanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ScanIssue(r.Context(), issuance.ScanInput{
			LotNo:       strings.TrimSpace(req.LotNo),
			OrderID:     req.OrderID,
			WarehouseID: req.WarehouseID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func IssuanceCancel(svc issuance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIssuanceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelIssuanceRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		record, err := svc.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func IssuanceDetail(svc issuance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIssuanceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func IssuanceList(svc issuance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := issuance.ListFilters{}
		filters.LotID, err = validators.ParseQueryUUID(r, "lot_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.OrderID, err = validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, err := enums.ParseIssuanceStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseIssuanceID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "issuanceId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "issuance id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid issuance id")
	}
	return id, nil
}
