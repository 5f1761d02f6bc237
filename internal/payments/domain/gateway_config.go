package domain

import (
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
)

// GatewayConfig is the persisted configuration row for a payment gateway
// (spec §3 PaymentGatewayConfig). It supplies currency support and fees.
// The concrete adapters (Xendit, Midtrans) are built from environment
// credentials in internal/app and do not read WebhookSecret from this row.
type GatewayConfig struct {
	GatewayID           string
	Name                string
	SupportedCurrencies []money.Currency
	FeePercentage       decimal.Decimal
	FeeFixed            decimal.Decimal
	WebhookSecret       string
	BaseURL             string
	Environment         string
	IsActive            bool
}

// SupportsCurrency reports whether the gateway can settle the given currency.
func (c GatewayConfig) SupportsCurrency(currency money.Currency) bool {
	for _, cur := range c.SupportedCurrencies {
		if cur == currency {
			return true
		}
	}
	return false
}

// ServiceFee computes §4.3's service-fee calculation: the percentage
// component rounded at the invoice's currency scale, plus the fixed
// component added unrounded (the fixed amount is assumed already expressed
// at the gateway's configured scale, per SPEC_FULL §8).
func (c GatewayConfig) ServiceFee(subtotal decimal.Decimal, currency money.Currency) decimal.Decimal {
	percentagePart := money.Round(subtotal.Mul(c.FeePercentage), currency)
	return percentagePart.Add(c.FeeFixed)
}
