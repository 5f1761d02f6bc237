package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
	"library-service/pkg/errors"
)

// Status is the lifecycle state of an Invoice.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPending        Status = "pending"
	StatusPartiallyPaid  Status = "partially_paid"
	StatusPaid           Status = "paid"
	StatusFailed         Status = "failed"
	StatusExpired        Status = "expired"
)

// validTransitions enumerates the allowed outbound edges of the invoice
// status graph. paid, failed and expired are terminal: they have no entry
// here and therefore no outbound edges.
var validTransitions = map[Status]map[Status]bool{
	StatusDraft:         {StatusPending: true, StatusExpired: true},
	StatusPending:       {StatusPartiallyPaid: true, StatusPaid: true, StatusFailed: true, StatusExpired: true},
	StatusPartiallyPaid: {StatusPaid: true, StatusExpired: true},
}

// ValidateStatusTransition reports whether moving an invoice from `from` to
// `to` is allowed by the state machine in §4.4. Same-state transitions are
// always idempotent.
func ValidateStatusTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if edges, ok := validTransitions[from]; ok && edges[to] {
		return nil
	}
	return errors.ErrInvalidStatusTransition.WithDetails("from", from).WithDetails("to", to)
}

// Invoice is the root aggregate: it owns its LineItems and
// InstallmentSchedules and carries the immutable monetary breakdown once
// payment has been initiated.
type Invoice struct {
	ID                uuid.UUID
	TenantID           string
	ExternalID         string
	Currency           money.Currency
	GatewayID          string
	Subtotal           decimal.Decimal
	TaxTotal           decimal.Decimal
	ServiceFee         decimal.Decimal
	TotalAmount        decimal.Decimal
	Status             Status
	PaymentInitiatedAt *time.Time
	ExpiresAt          time.Time
	OriginalInvoiceID  *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time

	LineItems    []LineItem
	Installments []InstallmentSchedule
}

// LineItem is one priced row inside an invoice.
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxCategory *string
	TaxAmount   decimal.Decimal
}

// IsImmutable reports whether the invoice has already had payment
// initiated and therefore rejects edits to line items and gateway choice.
func (i *Invoice) IsImmutable() bool {
	return i.PaymentInitiatedAt != nil
}

// ValidateCanModify returns ErrInvoiceImmutable once payment has been
// initiated; it guards line-item and gateway-choice mutation (I4).
func (i *Invoice) ValidateCanModify() error {
	if i.IsImmutable() {
		return errors.ErrInvoiceImmutable.WithDetails("invoice_id", i.ID.String())
	}
	return nil
}

// InitiatePayment sets PaymentInitiatedAt and transitions draft -> pending.
// It is a no-op (not an error) if payment was already initiated, matching
// the "only if it was null" contract in §4.4.
func (i *Invoice) InitiatePayment(now time.Time) error {
	if i.PaymentInitiatedAt != nil {
		return nil
	}
	if err := ValidateStatusTransition(i.Status, StatusPending); err != nil {
		return err
	}
	i.PaymentInitiatedAt = &now
	i.Status = StatusPending
	i.UpdatedAt = now
	return nil
}

// ValidateTotals checks invariant I1: total_amount = subtotal + tax_total + service_fee.
func (i *Invoice) ValidateTotals() error {
	expected := i.Subtotal.Add(i.TaxTotal).Add(i.ServiceFee)
	if !money.Equal(expected, i.TotalAmount, i.Currency) {
		return errors.ErrValidation.
			WithDetails("expected_total", expected.String()).
			WithDetails("actual_total", i.TotalAmount.String())
	}
	return nil
}
