// Package report exposes the financial summary use case (§5.3) as an HTTP
// route.
package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-service/internal/container"
	pkgmiddleware "library-service/internal/pkg/middleware"
	reportservice "library-service/internal/payments/service/report"
	"library-service/pkg/errors"
	"library-service/pkg/timeutil"
)

type Handler struct {
	usecases *container.Container
}

func NewHandler(usecases *container.Container) *Handler {
	return &Handler{usecases: usecases}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/financial", h.financial)
	return r
}

func (h *Handler) financial(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := pkgmiddleware.TenantIDFromContext(r.Context())

	start, err := timeutil.ParseISO8601(r.URL.Query().Get("start"))
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrValidation.WithDetails("reason", "invalid start").Wrap(err))
		return
	}
	end, err := timeutil.ParseISO8601(r.URL.Query().Get("end"))
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrValidation.WithDetails("reason", "invalid end").Wrap(err))
		return
	}

	rows, err := h.usecases.Report.FinancialSummary.Execute(r.Context(), tenantID, reportservice.FinancialSummaryRequest{
		Start: start,
		End:   end,
	})
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}
