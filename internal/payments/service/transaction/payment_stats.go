package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-service/internal/payments/domain"
)

// PaymentStatsUseCase answers GET /invoices/{id}/payment-stats: a summary
// of how much of an invoice has been paid and the state of its
// installments, if any.
type PaymentStatsUseCase struct {
	invoices     domain.InvoiceRepository
	installments domain.InstallmentRepository
	transactions domain.TransactionRepository
}

func NewPaymentStatsUseCase(invoices domain.InvoiceRepository, installments domain.InstallmentRepository, transactions domain.TransactionRepository) *PaymentStatsUseCase {
	return &PaymentStatsUseCase{invoices: invoices, installments: installments, transactions: transactions}
}

func (uc *PaymentStatsUseCase) Execute(ctx context.Context, tenantID string, invoiceID uuid.UUID) (domain.PaymentStatsResponse, error) {
	inv, err := uc.invoices.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return domain.PaymentStatsResponse{}, err
	}

	txns, err := uc.transactions.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return domain.PaymentStatsResponse{}, err
	}

	totalPaid := decimal.Zero
	for _, t := range txns {
		if t.Status == domain.TransactionCompleted {
			totalPaid = totalPaid.Add(t.AmountPaid)
		}
	}

	schedules, err := uc.installments.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return domain.PaymentStatsResponse{}, err
	}

	var paid, unpaid, overdue int
	for _, s := range schedules {
		switch s.Status {
		case domain.InstallmentPaid:
			paid++
		case domain.InstallmentOverdue:
			overdue++
		default:
			unpaid++
		}
	}

	return domain.PaymentStatsResponse{
		TotalAmount:      inv.TotalAmount.String(),
		TotalPaid:        totalPaid.String(),
		Balance:          inv.TotalAmount.Sub(totalPaid).String(),
		PaidCount:        paid,
		UnpaidCount:      unpaid,
		OverdueCount:     overdue,
		TransactionCount: len(txns),
	}, nil
}
