// Package gateway exposes the read-only gateway configuration listing
// (GET /gateways) used by integrators to discover which gateways and
// currencies a tenant can route payments through.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-service/internal/container"
	pkgmiddleware "library-service/internal/pkg/middleware"
)

type Handler struct {
	usecases *container.Container
}

func NewHandler(usecases *container.Container) *Handler {
	return &Handler{usecases: usecases}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	configs, err := h.usecases.GatewayConfigs.List(r.Context())
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, map[string]interface{}{"gateways": configs})
}
