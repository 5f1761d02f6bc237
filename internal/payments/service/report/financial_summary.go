// Package report implements the read-only financial reporting surface
// (§5.3 receipt/report supplement): a grouped summary over completed
// transactions for the GET /reports/financial endpoint.
package report

import (
	"context"
	"time"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

type FinancialSummaryUseCase struct {
	reports domain.ReportRepository
}

func NewFinancialSummaryUseCase(reports domain.ReportRepository) *FinancialSummaryUseCase {
	return &FinancialSummaryUseCase{reports: reports}
}

type FinancialSummaryRequest struct {
	Start time.Time
	End   time.Time
}

func (uc *FinancialSummaryUseCase) Execute(ctx context.Context, tenantID string, req FinancialSummaryRequest) ([]domain.FinancialSummaryRow, error) {
	if !req.End.After(req.Start) {
		return nil, errors.ErrValidation.WithDetails("reason", "end must be after start")
	}
	return uc.reports.FinancialSummary(ctx, tenantID, req.Start, req.End)
}
