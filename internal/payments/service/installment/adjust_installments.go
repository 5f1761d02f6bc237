// Package installment holds the installment-schedule use cases that sit
// above the pure calculator in internal/payments/domain: adjustment and the
// overdue sweep (§4.5).
package installment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/pkg/logutil"
)

// AdjustInstallmentsUseCase rewrites the still-unpaid portion of an
// invoice's installment schedule.
type AdjustInstallmentsUseCase struct {
	invoices     domain.InvoiceRepository
	installments domain.InstallmentRepository
}

func NewAdjustInstallmentsUseCase(invoices domain.InvoiceRepository, installments domain.InstallmentRepository) *AdjustInstallmentsUseCase {
	return &AdjustInstallmentsUseCase{invoices: invoices, installments: installments}
}

func (uc *AdjustInstallmentsUseCase) Execute(ctx context.Context, tenantID string, invoiceID uuid.UUID, req domain.AdjustInstallmentsRequest) ([]domain.InstallmentSchedule, error) {
	logger := logutil.UseCaseLogger(ctx, "installment", "adjust")

	inv, err := uc.invoices.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	pairs := make([]domain.AdjustmentPair, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		pairs = append(pairs, domain.AdjustmentPair{
			InstallmentNumber: a.InstallmentNumber,
			NewAmount:         a.NewAmount,
		})
	}

	adjusted, err := domain.AdjustSchedule(inv.Installments, pairs, inv.Currency)
	if err != nil {
		return nil, err
	}

	for i := range adjusted {
		adjusted[i].UpdatedAt = time.Now().UTC()
	}

	if err := uc.installments.ReplaceSchedule(ctx, invoiceID, adjusted); err != nil {
		logger.Error("failed to persist adjusted schedule", zap.Error(err))
		return nil, err
	}

	logger.Info("installment schedule adjusted", zap.String("invoice_id", invoiceID.String()), zap.Int("adjustment_count", len(pairs)))
	return adjusted, nil
}
