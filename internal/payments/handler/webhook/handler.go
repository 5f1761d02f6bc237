// Package webhook exposes the gateway callback ingress (§4.8) as an HTTP
// route. Each gateway signs its callbacks differently: Xendit sends a
// shared-secret token in X-Callback-Token, Midtrans signs with a bearer
// token in Authorization. The handler only extracts the right header per
// gateway; the actual verification happens in the gateway adapter.
package webhook

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"library-service/internal/container"
	pkgmiddleware "library-service/internal/pkg/middleware"
	"library-service/pkg/errors"
	"library-service/pkg/httputil"
)

type Handler struct {
	usecases *container.Container
}

func NewHandler(usecases *container.Container) *Handler {
	return &Handler{usecases: usecases}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{gateway}", h.deliver)
	return r
}

func (h *Handler) deliver(w http.ResponseWriter, r *http.Request) {
	gatewayID := httputil.MustGetURLParam(r, "gateway")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.Wrap(err))
		return
	}

	signature := extractSignature(r, gatewayID)

	// The tenant is recovered from the matched invoice inside the
	// processor, not from the request: gateway callbacks never carry an
	// X-API-Key, so there is no tenant in context at this point.
	err = h.usecases.Webhook.Dispatcher.Deliver(r.Context(), gatewayID, signature, body)
	if err != nil {
		// Any failure (including retry exhaustion) returns 500 so the
		// gateway schedules a redelivery; duplicates and successes both
		// return 200 below.
		pkgmiddleware.RespondError(w, errors.ErrInternal.Wrap(err))
		return
	}

	pkgmiddleware.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func extractSignature(r *http.Request, gatewayID string) string {
	switch gatewayID {
	case "midtrans":
		return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	default:
		return r.Header.Get("X-Callback-Token")
	}
}
