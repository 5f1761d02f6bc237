// Package memory provides in-memory fakes of the payment repositories for
// use-case unit tests, keeping a memory implementation alongside the
// postgres one for every repository interface.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// InvoiceRepository is an in-memory domain.InvoiceRepository.
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]domain.Invoice
}

var _ domain.InvoiceRepository = (*InvoiceRepository)(nil)

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: make(map[uuid.UUID]domain.Invoice)}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invoices {
		if existing.TenantID == invoice.TenantID && existing.ExternalID == invoice.ExternalID {
			return errors.ErrDuplicateExternalID.WithDetails("external_id", invoice.ExternalID)
		}
	}

	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, errors.ErrInvoiceNotFound.WithDetails("invoice_id", id.String())
	}
	copied := inv
	return &copied, nil
}

func (r *InvoiceRepository) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.ExternalID == externalID {
			copied := inv
			return &copied, nil
		}
	}
	return nil, errors.ErrInvoiceNotFound.WithDetails("external_id", externalID)
}

func (r *InvoiceRepository) GetByExternalIDAnyTenant(ctx context.Context, externalID string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invoices {
		if inv.ExternalID == externalID {
			copied := inv
			return &copied, nil
		}
	}
	return nil, errors.ErrInvoiceNotFound.WithDetails("external_id", externalID)
}

func (r *InvoiceRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]domain.Invoice, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID {
			matched = append(matched, inv)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.invoices[invoice.ID]
	if !ok || existing.TenantID != invoice.TenantID {
		return errors.ErrInvoiceNotFound.WithDetails("invoice_id", invoice.ID.String())
	}

	existing.Status = invoice.Status
	existing.Subtotal = invoice.Subtotal
	existing.TaxTotal = invoice.TaxTotal
	existing.ServiceFee = invoice.ServiceFee
	existing.TotalAmount = invoice.TotalAmount
	existing.PaymentInitiatedAt = invoice.PaymentInitiatedAt
	existing.UpdatedAt = invoice.UpdatedAt
	r.invoices[invoice.ID] = existing
	return nil
}

func (r *InvoiceRepository) ListExpiring(ctx context.Context, before time.Time, batchSize int) ([]domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Invoice
	for _, inv := range r.invoices {
		if (inv.Status == domain.StatusDraft || inv.Status == domain.StatusPending || inv.Status == domain.StatusPartiallyPaid) && inv.ExpiresAt.Before(before) {
			out = append(out, inv)
			if len(out) >= batchSize {
				break
			}
		}
	}
	return out, nil
}
