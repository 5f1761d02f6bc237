// Package invoice exposes the invoice lifecycle (§4.4) and installment
// (§4.5) use cases as chi routes.
package invoice

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"library-service/internal/container"
	"library-service/internal/payments/domain"
	pkgmiddleware "library-service/internal/pkg/middleware"
	"library-service/pkg/errors"
	"library-service/pkg/httputil"
	"library-service/pkg/pagination"
)

// Handler wires the invoice and installment use cases to HTTP.
type Handler struct {
	usecases *container.Container
}

func NewHandler(usecases *container.Container) *Handler {
	return &Handler{usecases: usecases}
}

// Routes mounts every invoice-scoped endpoint under its caller-chosen
// prefix (typically /invoices).
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/initiate-payment", h.initiatePayment)
	r.Get("/{id}/installments", h.listInstallments)
	r.Patch("/{id}/installments", h.adjustInstallments)
	r.Get("/{id}/transactions", h.listTransactions)
	r.Get("/{id}/payment-stats", h.paymentStats)
	return r
}

func tenantID(r *http.Request) string {
	id, _ := pkgmiddleware.TenantIDFromContext(r.Context())
	return id
}

func parseInvoiceID(r *http.Request) (uuid.UUID, error) {
	id, err := httputil.GetURLParam(r, "id")
	if err != nil {
		return uuid.UUID{}, err
	}
	return uuid.Parse(id)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	inv, err := h.usecases.Invoice.Create.Execute(r.Context(), tenantID(r), req)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusCreated, domain.ParseFromInvoice(inv))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	inv, err := h.usecases.Invoice.Get.Execute(r.Context(), tenantID(r), id)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, domain.ParseFromInvoice(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	p := pagination.NewPaginator(page, pageSize)

	invoices, total, err := h.usecases.Invoice.List.Execute(r.Context(), tenantID(r), p.Limit(), p.Offset())
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	out := make([]domain.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, domain.ParseFromInvoice(&invoices[i]))
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, p.BuildPage(out, total))
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	result, err := h.usecases.Invoice.InitiatePayment.Execute(r.Context(), tenantID(r), id)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	pkgmiddleware.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"invoice":      domain.ParseFromInvoice(result.Invoice),
		"payment_urls": result.PaymentURLs,
	})
}

func (h *Handler) listInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	inv, err := h.usecases.Invoice.Get.Execute(r.Context(), tenantID(r), id)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, domain.ParseFromInvoice(inv).Installments)
}

func (h *Handler) adjustInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	var req domain.AdjustInstallmentsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	schedules, err := h.usecases.Installment.Adjust.Execute(r.Context(), tenantID(r), id, req)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	resp := domain.ParseFromInvoice(&domain.Invoice{Installments: schedules})
	pkgmiddleware.RespondJSON(w, http.StatusOK, resp.Installments)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	txns, err := h.usecases.Transaction.List.Execute(r.Context(), tenantID(r), id)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}

	out := make([]domain.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, domain.ParseFromTransaction(t))
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) paymentStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseInvoiceID(r)
	if err != nil {
		pkgmiddleware.RespondError(w, errors.ErrInvalidInput.WithDetails("reason", "invalid invoice id"))
		return
	}

	stats, err := h.usecases.Transaction.PaymentStats.Execute(r.Context(), tenantID(r), id)
	if err != nil {
		pkgmiddleware.RespondError(w, err)
		return
	}
	pkgmiddleware.RespondJSON(w, http.StatusOK, stats)
}
