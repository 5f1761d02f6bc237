package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
)

// TransactionStatus is the lifecycle state of a PaymentTransaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// PaymentTransaction is the append-mostly ledger row created once per
// webhook event. gateway_transaction_ref is the idempotency key (I5):
// recording the same ref twice must return the original row unchanged.
type PaymentTransaction struct {
	ID                    uuid.UUID
	TenantID              string
	InvoiceID             uuid.UUID
	InstallmentID         *uuid.UUID
	GatewayTransactionRef string
	GatewayID             string
	AmountPaid            decimal.Decimal
	Currency              money.Currency
	PaymentMethod         string
	Status                TransactionStatus
	OverpaymentAmount     decimal.Decimal
	GatewayResponse       map[string]interface{}
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
