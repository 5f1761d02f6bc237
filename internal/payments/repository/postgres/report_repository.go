package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/payments/domain"
)

// ReportRepository implements domain.ReportRepository against pgxpool,
// grouping completed transactions by currency, gateway and a coarse tax-rate
// bucket for the financial summary report (§6 GET /reports/financial).
type ReportRepository struct {
	db *pgxpool.Pool
}

var _ domain.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) FinancialSummary(ctx context.Context, tenantID string, start, end time.Time) ([]domain.FinancialSummaryRow, error) {
	const query = `
		SELECT
			t.currency,
			t.gateway_id,
			CASE
				WHEN avg_tax.rate = 0 THEN 'none'
				WHEN avg_tax.rate < 0.1 THEN 'low'
				WHEN avg_tax.rate < 0.2 THEN 'standard'
				ELSE 'high'
			END AS tax_rate_bucket,
			count(*) AS transaction_count,
			sum(t.amount_paid) AS total_amount
		FROM payment_transactions t
		JOIN invoices i ON i.id = t.invoice_id
		LEFT JOIN LATERAL (
			SELECT avg(li.tax_rate) AS rate
			FROM line_items li
			WHERE li.invoice_id = i.id
		) avg_tax ON TRUE
		WHERE t.tenant_id = $1
		  AND t.status = 'completed'
		  AND t.created_at BETWEEN $2 AND $3
		GROUP BY t.currency, t.gateway_id, tax_rate_bucket
		ORDER BY t.currency, t.gateway_id
	`

	rows, err := r.db.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("financial summary: %w", err)
	}
	defer rows.Close()

	var out []domain.FinancialSummaryRow
	for rows.Next() {
		var row domain.FinancialSummaryRow
		if err := rows.Scan(&row.Currency, &row.GatewayID, &row.TaxRateBucket, &row.TransactionCount, &row.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan financial summary row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
