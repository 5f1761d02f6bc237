package transaction

import (
	"context"

	"github.com/google/uuid"

	"library-service/internal/payments/domain"
)

// ListTransactionsUseCase returns the full payment history for one invoice.
type ListTransactionsUseCase struct {
	transactions domain.TransactionRepository
}

func NewListTransactionsUseCase(transactions domain.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{transactions: transactions}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.PaymentTransaction, error) {
	return uc.transactions.ListByInvoice(ctx, tenantID, invoiceID)
}
