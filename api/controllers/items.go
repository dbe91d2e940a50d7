package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/api/responses"
	"github.com/YouHyuksoo/HANES-sub001/internal/items"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/logger"
)

func ItemList(repo items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ItemDetail(repo items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(chi.URLParam(r, "itemCode"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "item code is required"))
			return
		}

		item, err := repo.FindByCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item"))
			return
		}
		responses.WriteSuccess(w, item)
	}
}
