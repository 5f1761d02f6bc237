package installment

import (
	"context"

	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	"library-service/pkg/constants"
	"library-service/pkg/logutil"
	"library-service/pkg/timeutil"
)

// SweepOverdueUseCase transitions unpaid installments past their due date
// into the overdue state, for the worker's periodic run.
type SweepOverdueUseCase struct {
	installments domain.InstallmentRepository
}

func NewSweepOverdueUseCase(installments domain.InstallmentRepository) *SweepOverdueUseCase {
	return &SweepOverdueUseCase{installments: installments}
}

type SweepOverdueRequest struct {
	BatchSize int
}

func (uc *SweepOverdueUseCase) Execute(ctx context.Context, req SweepOverdueRequest) (int, error) {
	logger := logutil.UseCaseLogger(ctx, "installment", "sweep_overdue")

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultRetryBatchSize
	}
	if batchSize > constants.MaxRetryBatchSize {
		batchSize = constants.MaxRetryBatchSize
	}

	now := timeutil.Now()
	candidates, err := uc.installments.ListOverdueCandidates(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	touched := 0
	for i := range candidates {
		s := &candidates[i]
		s.Status = domain.InstallmentOverdue
		s.UpdatedAt = now
		if err := uc.installments.UpdateOne(ctx, s); err != nil {
			logger.Error("failed to mark installment overdue", zap.String("installment_id", s.ID.String()), zap.Error(err))
			continue
		}
		touched++
	}

	logger.Info("overdue sweep complete", zap.Int("candidates", len(candidates)), zap.Int("touched", touched))
	return touched, nil
}
