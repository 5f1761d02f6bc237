// Package webhook implements the gateway callback pipeline (§4.8):
// signature verification, idempotent recording, and dispatch to either the
// whole-invoice record-payment path (§4.7) or the per-installment payment
// path (§4.5).
package webhook

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/internal/payments/gateway"
	"library-service/internal/payments/service/transaction"
	"library-service/pkg/errors"
	"library-service/pkg/logutil"
)

// ProcessWebhookUseCase verifies, deduplicates and dispatches one inbound
// gateway callback.
type ProcessWebhookUseCase struct {
	invoices     domain.InvoiceRepository
	installments domain.InstallmentRepository
	transactions domain.TransactionRepository
	recorder     *transaction.RecordPaymentUseCase
	registry     *gateway.Registry
}

func NewProcessWebhookUseCase(
	invoices domain.InvoiceRepository,
	installments domain.InstallmentRepository,
	transactions domain.TransactionRepository,
	recorder *transaction.RecordPaymentUseCase,
	registry *gateway.Registry,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		invoices:     invoices,
		installments: installments,
		transactions: transactions,
		recorder:     recorder,
		registry:     registry,
	}
}

// Execute is invoked once per delivery attempt; retry scheduling for
// transient failures lives in Dispatcher. The callback carries no tenant
// credential, so the tenant is recovered from the matched invoice itself.
func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, gatewayID, signature string, rawPayload []byte) error {
	logger := logutil.UseCaseLogger(ctx, "webhook", "process")

	gw, err := uc.registry.ByName(gatewayID)
	if err != nil {
		return err
	}

	if !gw.VerifyWebhook(signature, rawPayload) {
		logger.Warn("webhook signature verification failed", zap.String("gateway_id", gatewayID))
		return errors.ErrWebhookSignatureInvalid.WithDetails("gateway_id", gatewayID)
	}

	payload, err := gw.ProcessWebhook(rawPayload)
	if err != nil {
		return errors.ErrWebhookDecodeFailed.WithDetails("gateway_id", gatewayID).Wrap(err)
	}

	if existing, err := uc.transactions.FindByGatewayRef(ctx, payload.GatewayReference); err != nil {
		return err
	} else if existing != nil {
		logger.Info("duplicate webhook delivery ignored", zap.String("gateway_reference", payload.GatewayReference))
		return nil
	}

	invoiceExternalID, installmentNumber, isInstallment := splitInstallmentExternalID(payload.ExternalID)

	inv, err := uc.invoices.GetByExternalIDAnyTenant(ctx, invoiceExternalID)
	if err != nil {
		return err
	}
	tenantID := inv.TenantID

	status := mapTransactionStatus(payload.Status)

	if !isInstallment {
		_, err := uc.recorder.Execute(ctx, tenantID, transaction.RecordPaymentRequest{
			InvoiceID:             inv.ID,
			GatewayTransactionRef: payload.GatewayReference,
			GatewayID:             gatewayID,
			Amount:                payload.AmountPaid,
			Currency:              string(inv.Currency),
			PaymentMethod:         payload.PaymentMethod,
			Status:                status,
			GatewayResponse:       payload.RawResponse,
		})
		if err != nil {
			return err
		}
		logger.Info("webhook processed", zap.String("invoice_id", inv.ID.String()), zap.String("gateway_reference", payload.GatewayReference))
		return nil
	}

	now := time.Now().UTC()
	txn := &domain.PaymentTransaction{
		ID:                    uuid.New(),
		TenantID:              tenantID,
		InvoiceID:             inv.ID,
		GatewayTransactionRef: payload.GatewayReference,
		GatewayID:             gatewayID,
		AmountPaid:            payload.AmountPaid,
		Currency:              inv.Currency,
		PaymentMethod:         payload.PaymentMethod,
		Status:                status,
		GatewayResponse:       payload.RawResponse,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = uc.transactions.CreateLocked(ctx, inv.ID, txn, func(ctx context.Context, lockedInvoice *domain.Invoice) error {
		if txn.Status != domain.TransactionCompleted {
			return uc.applyNonCompletedStatus(lockedInvoice, payload.Status)
		}
		return uc.applyInstallmentPayment(ctx, lockedInvoice, installmentNumber, payload.AmountPaid, now, txn)
	})
	if err != nil {
		return err
	}

	logger.Info("webhook processed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("gateway_reference", payload.GatewayReference),
		zap.String("status", string(txn.Status)),
	)
	return nil
}

func (uc *ProcessWebhookUseCase) applyInstallmentPayment(ctx context.Context, inv *domain.Invoice, installmentNumber int, amountPaid decimal.Decimal, now time.Time, txn *domain.PaymentTransaction) error {
	schedules, err := uc.installments.ListByInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		return err
	}

	result, err := domain.ApplyInstallmentPayment(schedules, installmentNumber, amountPaid, now)
	if err != nil {
		return err
	}

	if err := uc.installments.ReplaceSchedule(ctx, inv.ID, schedules); err != nil {
		return err
	}

	for _, n := range result.PaidInstallments {
		if n == installmentNumber {
			txn.InstallmentID = idPtr(findInstallmentID(schedules, n))
		}
	}
	txn.OverpaymentAmount = result.Overpayment

	if err := domain.ValidateStatusTransition(inv.Status, result.InvoiceStatus); err != nil {
		return err
	}
	inv.Status = result.InvoiceStatus
	inv.UpdatedAt = now
	return nil
}

func (uc *ProcessWebhookUseCase) applyNonCompletedStatus(inv *domain.Invoice, gatewayStatus string) error {
	target := domain.StatusFailed
	if gatewayStatus == "expired" {
		target = domain.StatusExpired
	}
	if err := domain.ValidateStatusTransition(inv.Status, target); err != nil {
		// A gateway retry notifying the same terminal status twice is not
		// itself an error; only a genuinely illegal transition is.
		return nil
	}
	inv.Status = target
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func findInstallmentID(schedules []domain.InstallmentSchedule, number int) uuid.UUID {
	for _, s := range schedules {
		if s.InstallmentNumber == number {
			return s.ID
		}
	}
	return uuid.Nil
}

// splitInstallmentExternalID reverses gateway.BuildInstallmentExternalID.
func splitInstallmentExternalID(externalID string) (invoiceExternalID string, installmentNumber int, ok bool) {
	idx := strings.LastIndex(externalID, gateway.InstallmentSeparator)
	if idx < 0 {
		return externalID, 0, false
	}
	n, err := strconv.Atoi(externalID[idx+len(gateway.InstallmentSeparator):])
	if err != nil {
		return externalID, 0, false
	}
	return externalID[:idx], n, true
}

func mapTransactionStatus(gatewayStatus string) domain.TransactionStatus {
	switch gatewayStatus {
	case "completed":
		return domain.TransactionCompleted
	case "expired", "failed":
		return domain.TransactionFailed
	default:
		return domain.TransactionPending
	}
}
