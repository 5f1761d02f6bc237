package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
)

// xenditCurrencies are the currencies Xendit's invoice API settles in,
// per §4.6.
var xenditCurrencies = map[money.Currency]bool{
	money.IDR: true,
	money.MYR: true,
}

const xenditInvoiceDurationSeconds = 86400 // 24h, matches the original gateway's FR-044.

// XenditClient implements Gateway against Xendit's Invoice API.
type XenditClient struct {
	client        *resty.Client
	apiKey        string
	webhookSecret string
	baseURL       string
}

// NewXenditClient builds a Xendit adapter. baseURL defaults to the
// production API host when empty.
func NewXenditClient(apiKey, webhookSecret, baseURL string) *XenditClient {
	if baseURL == "" {
		baseURL = "https://api.xendit.co"
	}
	return &XenditClient{
		client:        resty.New().SetTimeout(DefaultRequestTimeout),
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
	}
}

func (x *XenditClient) Name() string { return "xendit" }

func (x *XenditClient) SupportsCurrency(currency money.Currency) bool {
	return xenditCurrencies[currency]
}

type xenditInvoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
}

func (x *XenditClient) CreatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	amount := money.Round(req.Amount, req.Currency)

	description := req.Description
	if req.InstallmentInfo != nil {
		description = description + " - Installment " +
			strconv.Itoa(req.InstallmentInfo.InstallmentNumber) + "/" +
			strconv.Itoa(req.InstallmentInfo.TotalInstallments)
	}

	body := map[string]interface{}{
		"external_id":          req.ExternalID,
		"amount":               amount,
		"description":          description,
		"currency":             string(req.Currency),
		"invoice_duration":     xenditInvoiceDurationSeconds,
		"success_redirect_url": req.SuccessRedirect,
		"failure_redirect_url": req.FailureRedirect,
	}

	var parsed xenditInvoiceResponse
	resp, err := x.client.R().
		SetContext(ctx).
		SetBasicAuth(x.apiKey, "").
		SetBody(body).
		SetResult(&parsed).
		Post(x.baseURL + "/v2/invoices")

	if err != nil {
		return PaymentResponse{}, &Error{GatewayID: x.Name(), Cause: classifyTransportError(err), Err: err}
	}
	if resp.IsError() {
		return PaymentResponse{}, &Error{
			GatewayID:  x.Name(),
			HTTPStatus: resp.StatusCode(),
			Cause:      CauseAPIError,
			Err:        errors.New(string(resp.Body())),
		}
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(resp.Body(), &raw)

	return PaymentResponse{
		GatewayReference: parsed.ID,
		PaymentURL:       parsed.InvoiceURL,
		RawResponse:      raw,
	}, nil
}

// VerifyWebhook checks the X-Callback-Token value against an HMAC-SHA256
// digest of the raw payload, compared in constant time (§4.6).
func (x *XenditClient) VerifyWebhook(signature string, rawPayload []byte) bool {
	mac := hmac.New(sha256.New, []byte(x.webhookSecret))
	mac.Write(rawPayload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

type xenditWebhook struct {
	ID            string          `json:"id"`
	ExternalID    string          `json:"external_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

func (x *XenditClient) ProcessWebhook(rawPayload []byte) (WebhookPayload, error) {
	var w xenditWebhook
	if err := json.Unmarshal(rawPayload, &w); err != nil {
		return WebhookPayload{}, &Error{GatewayID: x.Name(), Cause: CauseParseError, Err: err}
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(rawPayload, &raw)

	method := w.PaymentMethod
	if method == "" {
		method = "unknown"
	}

	return WebhookPayload{
		GatewayReference: w.ID,
		ExternalID:       w.ExternalID,
		AmountPaid:       w.Amount,
		PaymentMethod:    method,
		Status:           mapXenditStatus(w.Status),
		RawResponse:      raw,
	}, nil
}

// mapXenditStatus maps Xendit's invoice status vocabulary onto the
// transaction status vocabulary, per §4.6.
func mapXenditStatus(status string) string {
	switch status {
	case "PAID":
		return "completed"
	case "EXPIRED":
		return "expired"
	default:
		return "pending"
	}
}
