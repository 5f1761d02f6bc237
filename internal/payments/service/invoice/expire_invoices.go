package invoice

import (
	"context"

	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/pkg/constants"
	"library-service/pkg/logutil"
	"library-service/pkg/timeutil"
)

// ExpireInvoicesUseCase implements the §4.9 periodic sweep: every active
// invoice whose expires_at has passed transitions to expired.
type ExpireInvoicesUseCase struct {
	invoices domain.InvoiceRepository
}

func NewExpireInvoicesUseCase(invoices domain.InvoiceRepository) *ExpireInvoicesUseCase {
	return &ExpireInvoicesUseCase{invoices: invoices}
}

// ExpireInvoicesRequest bounds a single sweep batch.
type ExpireInvoicesRequest struct {
	BatchSize int
}

func (uc *ExpireInvoicesUseCase) Execute(ctx context.Context, req ExpireInvoicesRequest) (int, error) {
	logger := logutil.UseCaseLogger(ctx, "invoice", "expire_sweep")

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultExpiryBatchSize
	}
	if batchSize > constants.MaxExpiryBatchSize {
		batchSize = constants.MaxExpiryBatchSize
	}

	now := timeutil.Now()
	candidates, err := uc.invoices.ListExpiring(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		inv := &candidates[i]
		targetStatus := domain.StatusExpired
		if err := domain.ValidateStatusTransition(inv.Status, targetStatus); err != nil {
			continue
		}
		inv.Status = targetStatus
		inv.UpdatedAt = now
		if err := uc.invoices.Update(ctx, inv); err != nil {
			logger.Error("failed to expire invoice", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
			continue
		}
		expired++
	}

	logger.Info("expiration sweep complete", zap.Int("candidates", len(candidates)), zap.Int("expired", expired))
	return expired, nil
}
