package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/internal/domain/money"
)

func TestValidateTaxRate(t *testing.T) {
	assert.NoError(t, ValidateTaxRate(decimal.NewFromFloat(0.11)))
	assert.NoError(t, ValidateTaxRate(decimal.Zero))
	assert.NoError(t, ValidateTaxRate(decimal.NewFromInt(1)))

	assert.Error(t, ValidateTaxRate(decimal.NewFromFloat(-0.01)), "negative rate")
	assert.Error(t, ValidateTaxRate(decimal.NewFromFloat(1.01)), "rate above 1")
	assert.Error(t, ValidateTaxRate(decimal.RequireFromString("0.12345")), "more than 4 decimal places")
}

func TestTaxAmount(t *testing.T) {
	subtotal := decimal.NewFromInt(100)
	rate := decimal.NewFromFloat(0.11)
	got := TaxAmount(subtotal, rate, money.USD)
	assert.Equal(t, "11", got.String())
}

func TestBuildLineItem(t *testing.T) {
	in := BuildLineItemInput{
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromFloat(49.99),
		TaxRate:     decimal.NewFromFloat(0.11),
	}

	item, err := BuildLineItem(in, money.USD)
	require.NoError(t, err)
	assert.Equal(t, "99.98", item.Subtotal.String())
	assert.Equal(t, "11", item.TaxAmount.String())
}

func TestBuildLineItemRejectsNonPositiveQuantity(t *testing.T) {
	in := BuildLineItemInput{
		Quantity:  decimal.Zero,
		UnitPrice: decimal.NewFromInt(10),
		TaxRate:   decimal.Zero,
	}
	_, err := BuildLineItem(in, money.USD)
	assert.Error(t, err)
}

func TestBuildLineItemRejectsNegativeUnitPrice(t *testing.T) {
	in := BuildLineItemInput{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(-5),
		TaxRate:   decimal.Zero,
	}
	_, err := BuildLineItem(in, money.USD)
	assert.Error(t, err)
}

func TestBuildLineItemPropagatesInvalidTaxRate(t *testing.T) {
	in := BuildLineItemInput{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(10),
		TaxRate:   decimal.NewFromFloat(1.5),
	}
	_, err := BuildLineItem(in, money.USD)
	assert.Error(t, err)
}
