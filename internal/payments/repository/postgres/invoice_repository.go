package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/domain/money"
	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// InvoiceRepository implements domain.InvoiceRepository against pgxpool.
type InvoiceRepository struct {
	db *pgxpool.Pool
}

var _ domain.InvoiceRepository = (*InvoiceRepository)(nil)

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	const insertInvoice = `
		INSERT INTO invoices (
			id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
			service_fee, total_amount, status, payment_initiated_at, expires_at,
			original_invoice_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`
	_, err = tx.Exec(ctx, insertInvoice,
		invoice.ID, invoice.TenantID, invoice.ExternalID, string(invoice.Currency), invoice.GatewayID,
		invoice.Subtotal, invoice.TaxTotal, invoice.ServiceFee, invoice.TotalAmount, invoice.Status,
		invoice.PaymentInitiatedAt, invoice.ExpiresAt, invoice.OriginalInvoiceID,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		if isUniqueViolation(err) {
			return errors.ErrDuplicateExternalID.WithDetails("external_id", invoice.ExternalID)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	const insertLineItem = `
		INSERT INTO line_items (
			id, invoice_id, product_name, quantity, unit_price, subtotal,
			tax_rate, tax_category, tax_amount
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	for _, li := range invoice.LineItems {
		_, err = tx.Exec(ctx, insertLineItem,
			li.ID, li.InvoiceID, li.ProductName, li.Quantity, li.UnitPrice,
			li.Subtotal, li.TaxRate, li.TaxCategory, li.TaxAmount,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	if err := insertInstallments(ctx, tx, invoice.ID, invoice.Installments); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit invoice creation: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Invoice, error) {
	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE tenant_id = $1 AND id = $2
	`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvoiceNotFound.WithDetails("invoice_id", id.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	if inv.LineItems, err = r.listLineItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	if inv.Installments, err = r.listInstallments(ctx, tenantID, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Invoice, error) {
	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE tenant_id = $1 AND external_id = $2
	`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, tenantID, externalID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvoiceNotFound.WithDetails("external_id", externalID)
		}
		return nil, fmt.Errorf("get invoice by external id: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByExternalIDAnyTenant(ctx context.Context, externalID string) (*domain.Invoice, error) {
	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE external_id = $1
	`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvoiceNotFound.WithDetails("external_id", externalID)
		}
		return nil, fmt.Errorf("get invoice by external id: %w", err)
	}

	if inv.LineItems, err = r.listLineItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	if inv.Installments, err = r.listInstallments(ctx, inv.TenantID, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]domain.Invoice, int, error) {
	const countQuery = `SELECT count(*) FROM invoices WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
		UPDATE invoices SET
			status = $3,
			subtotal = $4,
			tax_total = $5,
			service_fee = $6,
			total_amount = $7,
			payment_initiated_at = $8,
			updated_at = $9
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		invoice.TenantID, invoice.ID, invoice.Status, invoice.Subtotal,
		invoice.TaxTotal, invoice.ServiceFee, invoice.TotalAmount,
		invoice.PaymentInitiatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrInvoiceNotFound.WithDetails("invoice_id", invoice.ID.String())
	}
	return nil
}

func (r *InvoiceRepository) ListExpiring(ctx context.Context, before time.Time, batchSize int) ([]domain.Invoice, error) {
	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE status IN ('draft', 'pending', 'partially_paid') AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, before, batchSize)
	if err != nil {
		return nil, fmt.Errorf("list expiring invoices: %w", err)
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *InvoiceRepository) listLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error) {
	const query = `
		SELECT id, invoice_id, product_name, quantity, unit_price, subtotal,
		       tax_rate, tax_category, tax_amount
		FROM line_items
		WHERE invoice_id = $1
		ORDER BY product_name ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var out []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.ProductName, &li.Quantity,
			&li.UnitPrice, &li.Subtotal, &li.TaxRate, &li.TaxCategory, &li.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (r *InvoiceRepository) listInstallments(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.InstallmentSchedule, error) {
	installmentRepo := NewInstallmentRepository(r.db)
	return installmentRepo.ListByInvoice(ctx, tenantID, invoiceID)
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var currency string

	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.ExternalID, &currency, &inv.GatewayID,
		&inv.Subtotal, &inv.TaxTotal, &inv.ServiceFee, &inv.TotalAmount, &inv.Status,
		&inv.PaymentInitiatedAt, &inv.ExpiresAt, &inv.OriginalInvoiceID,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := money.Parse(currency)
	if err != nil {
		return nil, err
	}
	inv.Currency = parsed
	return &inv, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}
