package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository persists the invoice aggregate (invoice + line items +
// installment schedules). Every method is implicitly scoped to the tenant
// passed in; callers never pass an invoice ID without a tenant ID (§3
// Tenant isolation).
type InvoiceRepository interface {
	// Create persists a new invoice together with its line items and, if
	// present, its installment schedule, in a single transaction.
	Create(ctx context.Context, invoice *Invoice) error

	// Get loads an invoice aggregate (with line items and installments) by
	// ID, scoped to tenantID. Returns ErrInvoiceNotFound if absent or
	// owned by a different tenant.
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error)

	// GetByExternalID looks up an invoice by its tenant-scoped unique
	// external_id.
	GetByExternalID(ctx context.Context, tenantID, externalID string) (*Invoice, error)

	// GetByExternalIDAnyTenant looks up an invoice by external_id without a
	// tenant filter, for the webhook pipeline (§4.8): a gateway callback
	// carries only the external_id it was given at CreatePayment time, with
	// no tenant credential attached, so the tenant has to be recovered from
	// the matched row itself before any further tenant-scoped call.
	GetByExternalIDAnyTenant(ctx context.Context, externalID string) (*Invoice, error)

	// List returns invoices for a tenant ordered by created_at descending.
	List(ctx context.Context, tenantID string, limit, offset int) ([]Invoice, int, error)

	// Update persists changes to invoice-level fields (status, totals,
	// payment_initiated_at). It does not touch line items.
	Update(ctx context.Context, invoice *Invoice) error

	// ListExpiring returns invoices in an active status whose expires_at
	// has passed, for the expiration worker's sweep (§4.9).
	ListExpiring(ctx context.Context, before time.Time, batchSize int) ([]Invoice, error)
}

// InstallmentRepository persists InstallmentSchedule rows.
type InstallmentRepository interface {
	// ReplaceSchedule atomically replaces the installment set for an
	// invoice (used by both initial generation and adjustment).
	ReplaceSchedule(ctx context.Context, invoiceID uuid.UUID, schedules []InstallmentSchedule) error

	// ListByInvoice returns the ordered schedule for one invoice.
	ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]InstallmentSchedule, error)

	// UpdateOne persists a single installment's mutable fields (status,
	// payment_url, gateway_reference, paid_at).
	UpdateOne(ctx context.Context, schedule *InstallmentSchedule) error

	// ListOverdueCandidates returns unpaid installments with a due date
	// before the cutoff, across tenants, for the overdue sweep.
	ListOverdueCandidates(ctx context.Context, before time.Time, batchSize int) ([]InstallmentSchedule, error)
}

// TransactionRepository persists PaymentTransaction rows under the
// pessimistic-locking discipline described in §4.7.
type TransactionRepository interface {
	// FindByGatewayRef returns the transaction with the given idempotency
	// key, or nil if none exists.
	FindByGatewayRef(ctx context.Context, gatewayTransactionRef string) (*PaymentTransaction, error)

	// CreateLocked acquires a row lock on the parent invoice, inserts the
	// transaction, and invokes fn with the locked invoice so the caller can
	// recompute and persist invoice status within the same transaction.
	// fn must not perform any external I/O (§5 shared-resource policy).
	CreateLocked(ctx context.Context, invoiceID uuid.UUID, txn *PaymentTransaction, fn func(ctx context.Context, invoice *Invoice) error) error

	// ListByInvoice returns the payment history for one invoice.
	ListByInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) ([]PaymentTransaction, error)
}

// GatewayConfigRepository persists PaymentGatewayConfig rows.
type GatewayConfigRepository interface {
	Get(ctx context.Context, gatewayID string) (*GatewayConfig, error)
	List(ctx context.Context) ([]GatewayConfig, error)
}

// APIKeyRepository resolves API keys to tenants for the auth middleware.
type APIKeyRepository interface {
	FindActiveByHashCandidate(ctx context.Context, lookupHint string) ([]APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
	RecordAudit(ctx context.Context, entry AuditEntry) error
}

// WebhookRetryRepository persists one row per webhook retry attempt
// (spec §6 webhook_retry_log), supplementing the in-process retry loop
// with an audit trail.
type WebhookRetryRepository interface {
	RecordAttempt(ctx context.Context, gatewayID, gatewayTransactionRef string, attempt int, errMessage string, nextAttemptAt *time.Time) error
}

// FinancialSummaryRow is one grouped row of the financial report (§6
// GET /reports/financial), grouped by currency/gateway/tax-rate bucket.
type FinancialSummaryRow struct {
	Currency        string
	GatewayID       string
	TaxRateBucket   string
	TransactionCount int
	TotalAmount     string
}

// ReportRepository exposes read-only aggregations over completed
// transactions.
type ReportRepository interface {
	FinancialSummary(ctx context.Context, tenantID string, start, end time.Time) ([]FinancialSummaryRow, error)
}
