// Package money implements the decimal-safe arithmetic core shared by the
// invoice, installment and gateway-fee calculations: currency scale lookup,
// banker's-rounding, and amount validation.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"library-service/pkg/errors"
)

// Currency is a 3-letter uppercase ISO-4217-style currency code.
type Currency string

const (
	IDR Currency = "IDR"
	MYR Currency = "MYR"
	USD Currency = "USD"
)

// scales holds the native decimal scale of every currency the orchestrator
// understands. IDR has no fractional unit; MYR and USD use cents.
var scales = map[Currency]int32{
	IDR: 0,
	MYR: 2,
	USD: 2,
}

// Parse normalizes and validates a currency code.
func Parse(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := scales[c]; !ok {
		return "", errors.ErrValidation.WithDetails("currency", code)
	}
	return c, nil
}

// Scale returns the number of fractional digits a currency carries.
func Scale(c Currency) int32 {
	return scales[c]
}

// SmallestUnit returns the smallest representable increment of a currency,
// e.g. 0.01 for USD/MYR, 1 for IDR.
func SmallestUnit(c Currency) decimal.Decimal {
	return decimal.New(1, -Scale(c))
}

// Round applies banker's rounding (half-to-even) at the currency's native
// scale. decimal.Decimal's own Round is half-away-from-zero, so the
// half-to-even case is handled explicitly here.
func Round(amount decimal.Decimal, c Currency) decimal.Decimal {
	return RoundBankers(amount, Scale(c))
}

// RoundBankers rounds amount to the given number of fractional digits using
// half-to-even rounding: a value exactly halfway between two representable
// amounts rounds to whichever is even, instead of always away from zero.
func RoundBankers(amount decimal.Decimal, places int32) decimal.Decimal {
	factor := decimal.New(1, places)
	scaled := amount.Mul(factor)

	floor := scaled.Floor()
	diff := scaled.Sub(floor)
	half := decimal.NewFromFloat(0.5)

	var rounded decimal.Decimal
	switch {
	case diff.LessThan(half):
		rounded = floor
	case diff.GreaterThan(half):
		rounded = floor.Add(decimal.NewFromInt(1))
	default:
		// Exactly halfway: round to even.
		if floor.Mod(decimal.NewFromInt(2)).IsZero() {
			rounded = floor
		} else {
			rounded = floor.Add(decimal.NewFromInt(1))
		}
	}

	return rounded.Div(factor).Truncate(places)
}

// ValidateAmount rejects negative amounts and amounts carrying more
// fractional precision than the currency's native scale allows.
func ValidateAmount(amount decimal.Decimal, c Currency) error {
	if amount.IsNegative() {
		return errors.ErrValidation.WithDetails("amount", amount.String()).WithDetails("reason", "amount must not be negative")
	}

	scale := Scale(c)
	if -amount.Exponent() > scale {
		return errors.ErrValidation.
			WithDetails("amount", amount.String()).
			WithDetails("reason", "amount precision exceeds currency scale")
	}

	return nil
}

// Equal reports whether two amounts are equal once both are rounded to the
// currency's scale.
func Equal(a, b decimal.Decimal, c Currency) bool {
	return Round(a, c).Equal(Round(b, c))
}
