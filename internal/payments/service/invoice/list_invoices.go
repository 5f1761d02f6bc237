package invoice

import (
	"context"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
)

// GetInvoiceUseCase loads a single invoice aggregate scoped to its tenant.
type GetInvoiceUseCase struct {
	invoices domain.InvoiceRepository
}

func NewGetInvoiceUseCase(invoices domain.InvoiceRepository) *GetInvoiceUseCase {
	return &GetInvoiceUseCase{invoices: invoices}
}

func (uc *GetInvoiceUseCase) Execute(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Invoice, error) {
	return uc.invoices.Get(ctx, tenantID, id)
}

// ListInvoicesUseCase pages through a tenant's invoices.
type ListInvoicesUseCase struct {
	invoices domain.InvoiceRepository
}

func NewListInvoicesUseCase(invoices domain.InvoiceRepository) *ListInvoicesUseCase {
	return &ListInvoicesUseCase{invoices: invoices}
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (uc *ListInvoicesUseCase) Execute(ctx context.Context, tenantID string, limit, offset int) ([]domain.Invoice, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.invoices.List(ctx, tenantID, limit, offset)
}
