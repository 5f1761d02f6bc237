// Package gateway defines the PaymentGateway capability (§4.6) and its
// concrete adapters. The domain layer depends only on the Gateway
// interface; Xendit and Midtrans are interchangeable implementations
// registered by name at startup.
package gateway

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
)

// DefaultRequestTimeout bounds every outbound gateway call (§5 Cancellation
// & timeouts).
const DefaultRequestTimeout = 30 * time.Second

// InstallmentSeparator is the literal token used to build synthetic
// external IDs for installment payments: {external_id}-installment-{n}.
const InstallmentSeparator = "-installment-"

// PaymentRequest carries everything a gateway needs to create a remote
// payment.
type PaymentRequest struct {
	ExternalID      string
	Amount          decimal.Decimal
	Currency        money.Currency
	Description     string
	SuccessRedirect string
	FailureRedirect string
	InstallmentInfo *InstallmentInfo
}

// InstallmentInfo annotates a PaymentRequest created for one installment of
// a schedule, so the adapter can compose a distinguishing description.
type InstallmentInfo struct {
	InstallmentNumber int
	TotalInstallments int
}

// PaymentResponse is the gateway's answer to a create-payment call.
type PaymentResponse struct {
	GatewayReference string
	PaymentURL       string
	RawResponse      map[string]interface{}
}

// WebhookPayload is the canonical shape every gateway's callback is
// normalized into.
type WebhookPayload struct {
	GatewayReference string
	ExternalID       string
	AmountPaid       decimal.Decimal
	PaymentMethod    string
	Status           string
	RawResponse      map[string]interface{}
}

// ErrorCause classifies why an outbound gateway call failed, for
// observability (§4.6).
type ErrorCause string

const (
	CauseTimeout       ErrorCause = "timeout"
	CauseConnectFailed ErrorCause = "connect_failed"
	CauseAPIError      ErrorCause = "api_error"
	CauseParseError    ErrorCause = "parse_error"
)

// Error wraps a gateway failure with enough context for the caller to
// decide whether to retry.
type Error struct {
	GatewayID  string
	HTTPStatus int
	Cause      ErrorCause
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.GatewayID + ": " + string(e.Cause) + ": " + e.Err.Error()
	}
	return e.GatewayID + ": " + string(e.Cause)
}

func (e *Error) Unwrap() error { return e.Err }

// Gateway is the capability every payment provider adapter implements.
// Callers never see provider-specific types outside this package.
type Gateway interface {
	// Name returns the stable gateway identifier (e.g. "xendit").
	Name() string

	// SupportsCurrency reports whether this gateway can settle the given
	// currency.
	SupportsCurrency(currency money.Currency) bool

	// CreatePayment issues the remote payment-creation call. May fail with
	// *Error.
	CreatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)

	// VerifyWebhook checks the signature/token attached to a raw webhook
	// payload using constant-time comparison.
	VerifyWebhook(signature string, rawPayload []byte) bool

	// ProcessWebhook canonicalizes the gateway's native payload shape into
	// a WebhookPayload.
	ProcessWebhook(rawPayload []byte) (WebhookPayload, error)
}

// BuildInstallmentExternalID composes the synthetic external ID used for
// installment payments, per §6 "External ID format for installment
// payments".
func BuildInstallmentExternalID(invoiceExternalID string, installmentNumber int) string {
	return invoiceExternalID + InstallmentSeparator + strconv.Itoa(installmentNumber)
}

// classifyTransportError buckets a resty/net transport failure into an
// ErrorCause so callers can decide whether a retry is worthwhile.
func classifyTransportError(err error) ErrorCause {
	var netErr interface{ Timeout() bool }
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}
	return CauseConnectFailed
}
