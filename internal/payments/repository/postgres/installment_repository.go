package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// InstallmentRepository implements domain.InstallmentRepository against
// pgxpool.
type InstallmentRepository struct {
	db *pgxpool.Pool
}

var _ domain.InstallmentRepository = (*InstallmentRepository)(nil)

func NewInstallmentRepository(db *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) ReplaceSchedule(ctx context.Context, invoiceID uuid.UUID, schedules []domain.InstallmentSchedule) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM installment_schedules WHERE invoice_id = $1 AND status = 'unpaid'`, invoiceID); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("clear unpaid installments: %w", err)
	}

	if err := insertInstallments(ctx, tx, invoiceID, schedules); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace schedule: %w", err)
	}
	return nil
}

// insertInstallments upserts every schedule row; on a conflict the update
// applies only while the stored row is still unpaid, so paid installments
// (which ReplaceSchedule does not clear beforehand) are left untouched.
func insertInstallments(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, schedules []domain.InstallmentSchedule) error {
	const query = `
		INSERT INTO installment_schedules (
			id, invoice_id, tenant_id, installment_number, amount, tax_amount,
			service_fee_amount, due_date, status, payment_url, gateway_reference,
			paid_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (invoice_id, installment_number) DO UPDATE SET
			amount = EXCLUDED.amount,
			tax_amount = EXCLUDED.tax_amount,
			service_fee_amount = EXCLUDED.service_fee_amount,
			due_date = EXCLUDED.due_date,
			updated_at = EXCLUDED.updated_at
		WHERE installment_schedules.status = 'unpaid'
	`
	for _, s := range schedules {
		_, err := tx.Exec(ctx, query,
			s.ID, invoiceID, s.TenantID, s.InstallmentNumber, s.Amount, s.TaxAmount,
			s.ServiceFeeAmount, s.DueDate, s.Status, s.PaymentURL, s.GatewayReference,
			s.PaidAt, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", s.InstallmentNumber, err)
		}
	}
	return nil
}

func (r *InstallmentRepository) ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.InstallmentSchedule, error) {
	const query = `
		SELECT id, invoice_id, tenant_id, installment_number, amount, tax_amount,
		       service_fee_amount, due_date, status, payment_url, gateway_reference,
		       paid_at, created_at, updated_at
		FROM installment_schedules
		WHERE tenant_id = $1 AND invoice_id = $2
		ORDER BY installment_number ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []domain.InstallmentSchedule
	for rows.Next() {
		s, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *InstallmentRepository) UpdateOne(ctx context.Context, schedule *domain.InstallmentSchedule) error {
	const query = `
		UPDATE installment_schedules SET
			status = $3,
			payment_url = $4,
			gateway_reference = $5,
			paid_at = $6,
			updated_at = $7
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		schedule.TenantID, schedule.ID, schedule.Status, schedule.PaymentURL,
		schedule.GatewayReference, schedule.PaidAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrInvoiceNotFound.WithDetails("installment_id", schedule.ID.String())
	}
	return nil
}

func (r *InstallmentRepository) ListOverdueCandidates(ctx context.Context, before time.Time, batchSize int) ([]domain.InstallmentSchedule, error) {
	const query = `
		SELECT id, invoice_id, tenant_id, installment_number, amount, tax_amount,
		       service_fee_amount, due_date, status, payment_url, gateway_reference,
		       paid_at, created_at, updated_at
		FROM installment_schedules
		WHERE status = 'unpaid' AND due_date < $1
		ORDER BY due_date ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, before, batchSize)
	if err != nil {
		return nil, fmt.Errorf("list overdue installments: %w", err)
	}
	defer rows.Close()

	var out []domain.InstallmentSchedule
	for rows.Next() {
		s, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanInstallment(row rowScanner) (*domain.InstallmentSchedule, error) {
	var s domain.InstallmentSchedule
	err := row.Scan(
		&s.ID, &s.InvoiceID, &s.TenantID, &s.InstallmentNumber, &s.Amount, &s.TaxAmount,
		&s.ServiceFeeAmount, &s.DueDate, &s.Status, &s.PaymentURL, &s.GatewayReference,
		&s.PaidAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, err
	}
	return &s, nil
}
