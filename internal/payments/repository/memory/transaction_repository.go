package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// TransactionRepository is an in-memory domain.TransactionRepository. It
// approximates the postgres adapter's row-locking with a single mutex
// guarding both the transaction ledger and the invoices it touches, since
// tests never run CreateLocked concurrently against the same invoice from
// more than one real OS thread.
type TransactionRepository struct {
	mu           sync.Mutex
	byGatewayRef map[string]domain.PaymentTransaction
	byInvoiceID  map[uuid.UUID][]domain.PaymentTransaction
	invoices     *InvoiceRepository
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

func NewTransactionRepository(invoices *InvoiceRepository) *TransactionRepository {
	return &TransactionRepository{
		byGatewayRef: make(map[string]domain.PaymentTransaction),
		byInvoiceID:  make(map[uuid.UUID][]domain.PaymentTransaction),
		invoices:     invoices,
	}
}

func (r *TransactionRepository) FindByGatewayRef(ctx context.Context, gatewayTransactionRef string) (*domain.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.byGatewayRef[gatewayTransactionRef]
	if !ok {
		return nil, nil
	}
	copied := txn
	return &copied, nil
}

func (r *TransactionRepository) CreateLocked(ctx context.Context, invoiceID uuid.UUID, txn *domain.PaymentTransaction, fn func(ctx context.Context, invoice *domain.Invoice) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invoices.mu.Lock()
	invoice, ok := r.invoices.invoices[invoiceID]
	r.invoices.mu.Unlock()
	if !ok {
		return errors.ErrInvoiceNotFound.WithDetails("invoice_id", invoiceID.String())
	}

	if _, exists := r.byGatewayRef[txn.GatewayTransactionRef]; exists {
		return errors.ErrDuplicateGatewayRef.WithDetails("gateway_transaction_ref", txn.GatewayTransactionRef)
	}

	r.byGatewayRef[txn.GatewayTransactionRef] = *txn
	r.byInvoiceID[invoiceID] = append(r.byInvoiceID[invoiceID], *txn)

	if err := fn(ctx, &invoice); err != nil {
		delete(r.byGatewayRef, txn.GatewayTransactionRef)
		r.byInvoiceID[invoiceID] = r.byInvoiceID[invoiceID][:len(r.byInvoiceID[invoiceID])-1]
		return err
	}

	r.invoices.mu.Lock()
	r.invoices.invoices[invoiceID] = invoice
	r.invoices.mu.Unlock()
	return nil
}

func (r *TransactionRepository) ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PaymentTransaction
	for _, t := range r.byInvoiceID[invoiceID] {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}
