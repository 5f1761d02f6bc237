package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-service/internal/domain/money"
	"library-service/internal/payments/domain"
	"library-service/pkg/errors"
)

// TransactionRepository implements domain.TransactionRepository against a
// pgxpool connection pool. CreateLocked follows the row-locking discipline
// of §4.7: the parent invoice row is locked for the lifetime of the
// transaction so that two concurrent webhook deliveries for the same
// invoice serialize instead of racing on the status recomputation.
type TransactionRepository struct {
	db *pgxpool.Pool
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) FindByGatewayRef(ctx context.Context, gatewayTransactionRef string) (*domain.PaymentTransaction, error) {
	const query = `
		SELECT id, tenant_id, invoice_id, installment_id, gateway_transaction_ref,
		       gateway_id, amount_paid, currency, payment_method, status,
		       overpayment_amount, gateway_response, created_at, updated_at
		FROM payment_transactions
		WHERE gateway_transaction_ref = $1
	`

	row := r.db.QueryRow(ctx, query, gatewayTransactionRef)
	txn, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find transaction by gateway ref: %w", err)
	}
	return txn, nil
}

// CreateLocked implements the pessimistic-locking recipe: it opens a
// transaction, locks the parent invoice row with SELECT ... FOR UPDATE,
// inserts the new payment_transactions row, then hands the locked invoice
// to fn so the caller can recompute and persist status changes before the
// transaction commits. fn must not perform gateway I/O (§5).
func (r *TransactionRepository) CreateLocked(ctx context.Context, invoiceID uuid.UUID, txn *domain.PaymentTransaction, fn func(ctx context.Context, invoice *domain.Invoice) error) error {
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

	invoice, err := lockInvoice(ctx, tx, invoiceID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := fn(ctx, invoice); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := updateInvoiceRow(ctx, tx, invoice); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]domain.PaymentTransaction, error) {
	const query = `
		SELECT id, tenant_id, invoice_id, installment_id, gateway_transaction_ref,
		       gateway_id, amount_paid, currency, payment_method, status,
		       overpayment_amount, gateway_response, created_at, updated_at
		FROM payment_transactions
		WHERE tenant_id = $1 AND invoice_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by invoice: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *txn)
	}
	return out, rows.Err()
}

// rowScanner abstracts over pgx.Row and pgx.Rows so scanTransaction works
// for both a single QueryRow and an iterated Query.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.PaymentTransaction, error) {
	var (
		t             domain.PaymentTransaction
		installmentID *uuid.UUID
		rawResponse   []byte
	)

	err := row.Scan(
		&t.ID, &t.TenantID, &t.InvoiceID, &installmentID, &t.GatewayTransactionRef,
		&t.GatewayID, &t.AmountPaid, &t.Currency, &t.PaymentMethod, &t.Status,
		&t.OverpaymentAmount, &rawResponse, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.InstallmentID = installmentID
	if len(rawResponse) > 0 {
		_ = json.Unmarshal(rawResponse, &t.GatewayResponse)
	}
	return &t, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *domain.PaymentTransaction) error {
	rawResponse, err := json.Marshal(txn.GatewayResponse)
	if err != nil {
		return fmt.Errorf("marshal gateway response: %w", err)
	}

	const query = `
		INSERT INTO payment_transactions (
			id, tenant_id, invoice_id, installment_id, gateway_transaction_ref,
			gateway_id, amount_paid, currency, payment_method, status,
			overpayment_amount, gateway_response, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`

	_, err = tx.Exec(ctx, query,
		txn.ID, txn.TenantID, txn.InvoiceID, txn.InstallmentID, txn.GatewayTransactionRef,
		txn.GatewayID, txn.AmountPaid, txn.Currency, txn.PaymentMethod, txn.Status,
		txn.OverpaymentAmount, rawResponse, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return errors.ErrDuplicateGatewayRef.WithDetails("gateway_transaction_ref", txn.GatewayTransactionRef).Wrap(err)
	}
	return nil
}

func lockInvoice(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID) (*domain.Invoice, error) {
	const query = `
		SELECT id, tenant_id, external_id, currency, gateway_id, subtotal, tax_total,
		       service_fee, total_amount, status, payment_initiated_at, expires_at,
		       original_invoice_id, created_at, updated_at
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`

	var inv domain.Invoice
	var currency string
	err := tx.QueryRow(ctx, query, invoiceID).Scan(
		&inv.ID, &inv.TenantID, &inv.ExternalID, &currency, &inv.GatewayID,
		&inv.Subtotal, &inv.TaxTotal, &inv.ServiceFee, &inv.TotalAmount, &inv.Status,
		&inv.PaymentInitiatedAt, &inv.ExpiresAt, &inv.OriginalInvoiceID,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvoiceNotFound.WithDetails("invoice_id", invoiceID.String())
		}
		return nil, fmt.Errorf("lock invoice: %w", err)
	}

	parsedCurrency, err := money.Parse(currency)
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	inv.Currency = parsedCurrency
	return &inv, nil
}

func updateInvoiceRow(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	const query = `
		UPDATE invoices SET
			status = $2,
			subtotal = $3,
			tax_total = $4,
			service_fee = $5,
			total_amount = $6,
			payment_initiated_at = $7,
			updated_at = $8
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		inv.ID, inv.Status, inv.Subtotal, inv.TaxTotal, inv.ServiceFee,
		inv.TotalAmount, inv.PaymentInitiatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}
