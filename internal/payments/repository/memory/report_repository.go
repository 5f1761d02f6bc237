package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-service/internal/payments/domain"
)

// ReportRepository is an in-memory domain.ReportRepository, grouping the
// transaction ledger the same way the postgres adapter's SQL does: by
// currency, gateway and a coarse tax-rate bucket.
type ReportRepository struct {
	transactions *TransactionRepository
	invoices     *InvoiceRepository
}

var _ domain.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(transactions *TransactionRepository, invoices *InvoiceRepository) *ReportRepository {
	return &ReportRepository{transactions: transactions, invoices: invoices}
}

func (r *ReportRepository) FinancialSummary(ctx context.Context, tenantID string, start, end time.Time) ([]domain.FinancialSummaryRow, error) {
	r.transactions.mu.Lock()
	all := make([]domain.PaymentTransaction, 0, len(r.transactions.byGatewayRef))
	for _, t := range r.transactions.byGatewayRef {
		all = append(all, t)
	}
	r.transactions.mu.Unlock()

	type bucketKey struct {
		currency  string
		gatewayID string
		bucket    string
	}
	totals := make(map[bucketKey]decimal.Decimal)
	counts := make(map[bucketKey]int)

	for _, t := range all {
		if t.TenantID != tenantID || t.Status != domain.TransactionCompleted {
			continue
		}
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}

		key := bucketKey{
			currency:  string(t.Currency),
			gatewayID: t.GatewayID,
			bucket:    r.taxRateBucket(t.InvoiceID),
		}
		totals[key] = totals[key].Add(t.AmountPaid)
		counts[key]++
	}

	var out []domain.FinancialSummaryRow
	for key, total := range totals {
		out = append(out, domain.FinancialSummaryRow{
			Currency:         key.currency,
			GatewayID:        key.gatewayID,
			TaxRateBucket:    key.bucket,
			TransactionCount: counts[key],
			TotalAmount:      total.String(),
		})
	}
	return out, nil
}

func (r *ReportRepository) taxRateBucket(invoiceID uuid.UUID) string {
	r.invoices.mu.RLock()
	defer r.invoices.mu.RUnlock()

	var avg decimal.Decimal
	if inv, ok := r.invoices.invoices[invoiceID]; ok {
		if len(inv.LineItems) == 0 {
			return "none"
		}
		sum := decimal.Zero
		for _, li := range inv.LineItems {
			sum = sum.Add(li.TaxRate)
		}
		avg = sum.Div(decimal.NewFromInt(int64(len(inv.LineItems))))
	}

	switch {
	case avg.IsZero():
		return "none"
	case avg.LessThan(decimal.NewFromFloat(0.1)):
		return "low"
	case avg.LessThan(decimal.NewFromFloat(0.2)):
		return "standard"
	default:
		return "high"
	}
}
