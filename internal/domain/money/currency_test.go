package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = Parse("XYZ")
	assert.Error(t, err)
}

func TestScale(t *testing.T) {
	assert.Equal(t, int32(0), Scale(IDR))
	assert.Equal(t, int32(2), Scale(USD))
	assert.Equal(t, int32(2), Scale(MYR))
}

func TestRoundBankersHalfToEven(t *testing.T) {
	tests := []struct {
		amount string
		places int32
		want   string
	}{
		{"2.005", 2, "2"},
		{"2.015", 2, "2.02"},
		{"2.025", 2, "2.02"},
		{"1.5", 0, "2"},
		{"2.5", 0, "2"},
	}

	for _, tt := range tests {
		got := RoundBankers(decimal.RequireFromString(tt.amount), tt.places)
		assert.Equal(t, tt.want, got.String(), "rounding %s to %d places", tt.amount, tt.places)
	}
}

func TestRoundUsesCurrencyScale(t *testing.T) {
	amount := decimal.RequireFromString("100.555")
	assert.Equal(t, "101", Round(amount, IDR).String())
	assert.Equal(t, "100.56", Round(amount, USD).String())
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.NewFromInt(10), USD))
	assert.Error(t, ValidateAmount(decimal.NewFromInt(-1), USD))
	assert.Error(t, ValidateAmount(decimal.RequireFromString("10.123"), USD), "more precision than USD's 2 decimal places")
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("10"), IDR))
	assert.Error(t, ValidateAmount(decimal.RequireFromString("10.5"), IDR), "IDR carries no fractional unit")
}

func TestEqual(t *testing.T) {
	a := decimal.RequireFromString("10.001")
	b := decimal.RequireFromString("10.004")
	assert.True(t, Equal(a, b, USD), "both round to 10.00 at USD scale")

	c := decimal.RequireFromString("10.006")
	assert.False(t, Equal(a, c, USD))
}

func TestSmallestUnit(t *testing.T) {
	assert.True(t, SmallestUnit(USD).Equal(decimal.RequireFromString("0.01")))
	assert.True(t, SmallestUnit(IDR).Equal(decimal.RequireFromString("1")))
}
