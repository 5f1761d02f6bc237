package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
	"library-service/pkg/errors"
)

// Default invoice and tax-rate limits. These are compile-time constants;
// no environment variable or config key overrides them.
const (
	DefaultInvoiceExpiryHours = 24
	MinInvoiceExpiry          = 1  // hours, relative to creation
	MaxInvoiceExpiryDays      = 30
	MaxTaxRateDecimalPlaces   = 4
)

// ValidateTaxRate enforces §4.2: tax_rate must be within [0, 1] and carry at
// most 4 fractional digits.
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.ErrValidation.WithDetails("tax_rate", rate.String()).
			WithDetails("reason", "tax_rate must be between 0 and 1")
	}
	if -rate.Exponent() > MaxTaxRateDecimalPlaces {
		return errors.ErrValidation.WithDetails("tax_rate", rate.String()).
			WithDetails("reason", "tax_rate must have at most 4 decimal places")
	}
	return nil
}

// ValidateExpiresAt enforces §4.4 step 6's bounds on a caller-supplied
// expires_at: it must lie in the future, at least MinInvoiceExpiry hours and
// at most MaxInvoiceExpiryDays days after createdAt, and — when the invoice
// carries an installment schedule — no earlier than the last installment's
// due date.
func ValidateExpiresAt(expiresAt, createdAt time.Time, lastInstallmentDueDate *time.Time) error {
	if !expiresAt.After(time.Now().UTC()) {
		return errors.ErrValidation.WithDetails("expires_at", expiresAt.String()).
			WithDetails("reason", "expires_at cannot be in the past")
	}

	minExpiry := createdAt.Add(MinInvoiceExpiry * time.Hour)
	if expiresAt.Before(minExpiry) {
		return errors.ErrValidation.WithDetails("expires_at", expiresAt.String()).
			WithDetails("reason", "expires_at must be at least 1 hour from created_at")
	}

	maxExpiry := createdAt.AddDate(0, 0, MaxInvoiceExpiryDays)
	if expiresAt.After(maxExpiry) {
		return errors.ErrValidation.WithDetails("expires_at", expiresAt.String()).
			WithDetails("reason", "expires_at must be within 30 days of created_at")
	}

	if lastInstallmentDueDate != nil && expiresAt.Before(*lastInstallmentDueDate) {
		return errors.ErrValidation.WithDetails("expires_at", expiresAt.String()).
			WithDetails("reason", "expires_at must not precede the last installment due date")
	}

	return nil
}

// TaxAmount computes §4.2's per-line-item tax: subtotal × tax_rate, rounded
// at currency scale. It is computed strictly per line item; callers sum the
// results to obtain the invoice tax_total.
func TaxAmount(subtotal, taxRate decimal.Decimal, currency money.Currency) decimal.Decimal {
	return money.Round(subtotal.Mul(taxRate), currency)
}

// BuildLineItemInput is a single caller-supplied line item before
// computation.
type BuildLineItemInput struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	TaxCategory *string
}

// BuildLineItem validates a line-item spec and computes its subtotal and
// tax amount (§4.4 step 3).
func BuildLineItem(in BuildLineItemInput, currency money.Currency) (LineItem, error) {
	if !in.Quantity.IsPositive() {
		return LineItem{}, errors.ErrValidation.WithDetails("reason", "quantity must be greater than zero")
	}
	if in.UnitPrice.IsNegative() {
		return LineItem{}, errors.ErrValidation.WithDetails("reason", "unit_price must not be negative")
	}
	if err := ValidateTaxRate(in.TaxRate); err != nil {
		return LineItem{}, err
	}

	subtotal := money.Round(in.Quantity.Mul(in.UnitPrice), currency)
	tax := TaxAmount(subtotal, in.TaxRate, currency)

	return LineItem{
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Subtotal:    subtotal,
		TaxRate:     in.TaxRate,
		TaxCategory: in.TaxCategory,
		TaxAmount:   tax,
	}, nil
}
