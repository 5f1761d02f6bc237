// Package transaction implements the §4.7 transaction recorder: the
// idempotent, row-locked critical section that turns one confirmed gateway
// payment into a persisted ledger entry and an invoice status transition.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
	"library-service/pkg/logutil"
)

type RecordPaymentUseCase struct {
	invoices     domain.InvoiceRepository
	transactions domain.TransactionRepository
}

func NewRecordPaymentUseCase(invoices domain.InvoiceRepository, transactions domain.TransactionRepository) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{invoices: invoices, transactions: transactions}
}

// RecordPaymentRequest mirrors the recorder's documented inputs.
type RecordPaymentRequest struct {
	InvoiceID             uuid.UUID
	GatewayTransactionRef string
	GatewayID             string
	Amount                decimal.Decimal
	Currency              string
	PaymentMethod         string
	Status                domain.TransactionStatus
	GatewayResponse       map[string]interface{}
}

// Execute records one whole-invoice payment. Installment payments go
// through domain.ApplyInstallmentPayment instead (§4.5) and are not routed
// here; the webhook dispatcher decides which path applies before calling
// either use case.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, tenantID string, req RecordPaymentRequest) (*domain.PaymentTransaction, error) {
	logger := logutil.UseCaseLogger(ctx, "transaction", "record_payment")

	if existing, err := uc.transactions.FindByGatewayRef(ctx, req.GatewayTransactionRef); err != nil {
		return nil, err
	} else if existing != nil {
		logger.Info("idempotent replay, returning existing transaction", zap.String("gateway_transaction_ref", req.GatewayTransactionRef))
		return existing, nil
	}

	inv, err := uc.invoices.Get(ctx, tenantID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if string(inv.Currency) != req.Currency {
		return nil, errors.ErrCurrencyMismatch.
			WithDetails("invoice_currency", string(inv.Currency)).
			WithDetails("transaction_currency", req.Currency)
	}

	now := time.Now().UTC()
	txn := &domain.PaymentTransaction{
		ID:                    uuid.New(),
		TenantID:              tenantID,
		InvoiceID:             req.InvoiceID,
		GatewayTransactionRef: req.GatewayTransactionRef,
		GatewayID:             req.GatewayID,
		AmountPaid:            req.Amount,
		Currency:              inv.Currency,
		PaymentMethod:         req.PaymentMethod,
		Status:                req.Status,
		GatewayResponse:       req.GatewayResponse,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = uc.transactions.CreateLocked(ctx, req.InvoiceID, txn, func(ctx context.Context, lockedInvoice *domain.Invoice) error {
		if txn.Status != domain.TransactionCompleted {
			return nil
		}

		priorTransactions, err := uc.transactions.ListByInvoice(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		totalPaid := txn.AmountPaid
		for _, prior := range priorTransactions {
			if prior.Status == domain.TransactionCompleted {
				totalPaid = totalPaid.Add(prior.AmountPaid)
			}
		}

		target := domain.StatusPartiallyPaid
		if totalPaid.GreaterThanOrEqual(lockedInvoice.TotalAmount) {
			target = domain.StatusPaid
		}
		if err := domain.ValidateStatusTransition(lockedInvoice.Status, target); err != nil {
			return err
		}
		lockedInvoice.Status = target
		lockedInvoice.UpdatedAt = now
		return nil
	})
	if err != nil {
		logger.Error("failed to record payment", zap.Error(err))
		return nil, err
	}

	logger.Info("payment recorded",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("gateway_transaction_ref", req.GatewayTransactionRef),
	)
	return txn, nil
}
