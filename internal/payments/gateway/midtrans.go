package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"library-service/internal/domain/money"
)

const midtransExpiryMinutes = 1440 // 24h, matches the invoice expiry default.

// MidtransClient implements Gateway against Midtrans's Snap transaction API.
// It supports IDR only.
type MidtransClient struct {
	client    *resty.Client
	serverKey string
	baseURL   string
}

// NewMidtransClient builds a Midtrans adapter. baseURL defaults to the
// sandbox host when empty.
func NewMidtransClient(serverKey, baseURL string) *MidtransClient {
	if baseURL == "" {
		baseURL = "https://api.sandbox.midtrans.com"
	}
	return &MidtransClient{
		client:    resty.New().SetTimeout(DefaultRequestTimeout),
		serverKey: serverKey,
		baseURL:   baseURL,
	}
}

func (m *MidtransClient) Name() string { return "midtrans" }

func (m *MidtransClient) SupportsCurrency(currency money.Currency) bool {
	return currency == money.IDR
}

type midtransSnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

func (m *MidtransClient) CreatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	amount := money.Round(req.Amount, req.Currency)

	itemName := req.Description
	if req.InstallmentInfo != nil {
		itemName = itemName + " - Installment " +
			strconv.Itoa(req.InstallmentInfo.InstallmentNumber) + "/" +
			strconv.Itoa(req.InstallmentInfo.TotalInstallments)
	}

	body := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     req.ExternalID,
			"gross_amount": amount.String(),
		},
		"item_details": []map[string]interface{}{
			{
				"id":       "item-1",
				"price":    amount.String(),
				"quantity": 1,
				"name":     itemName,
			},
		},
		"expiry": map[string]interface{}{
			"duration": midtransExpiryMinutes,
			"unit":     "minutes",
		},
	}

	var parsed midtransSnapResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBasicAuth(m.serverKey, "").
		SetHeader("Accept", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(m.baseURL + "/snap/v1/transactions")

	if err != nil {
		return PaymentResponse{}, &Error{GatewayID: m.Name(), Cause: classifyTransportError(err), Err: err}
	}
	if resp.IsError() {
		return PaymentResponse{}, &Error{
			GatewayID:  m.Name(),
			HTTPStatus: resp.StatusCode(),
			Cause:      CauseAPIError,
			Err:        errors.New(string(resp.Body())),
		}
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(resp.Body(), &raw)

	return PaymentResponse{
		GatewayReference: parsed.Token,
		PaymentURL:       parsed.RedirectURL,
		RawResponse:      raw,
	}, nil
}

// VerifyWebhook recomputes SHA-512(order_id+status_code+gross_amount+server_key)
// and compares it to the supplied signature in constant time. The three
// fields are read straight out of the raw payload rather than from a typed
// struct, matching Midtrans's own verification recipe.
func (m *MidtransClient) VerifyWebhook(signature string, rawPayload []byte) bool {
	var fields struct {
		OrderID     string `json:"order_id"`
		StatusCode  string `json:"status_code"`
		GrossAmount string `json:"gross_amount"`
	}
	if err := json.Unmarshal(rawPayload, &fields); err != nil {
		return false
	}

	h := sha512.New()
	h.Write([]byte(fields.OrderID + fields.StatusCode + fields.GrossAmount + m.serverKey))
	expected := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

type midtransWebhook struct {
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
}

func (m *MidtransClient) ProcessWebhook(rawPayload []byte) (WebhookPayload, error) {
	var w midtransWebhook
	if err := json.Unmarshal(rawPayload, &w); err != nil {
		return WebhookPayload{}, &Error{GatewayID: m.Name(), Cause: CauseParseError, Err: err}
	}

	amount, err := decimal.NewFromString(w.GrossAmount)
	if err != nil {
		return WebhookPayload{}, &Error{GatewayID: m.Name(), Cause: CauseParseError, Err: err}
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(rawPayload, &raw)

	return WebhookPayload{
		GatewayReference: w.TransactionID,
		ExternalID:       w.OrderID,
		AmountPaid:       amount,
		PaymentMethod:    w.PaymentType,
		Status:           mapMidtransStatus(w.TransactionStatus),
		RawResponse:      raw,
	}, nil
}

// mapMidtransStatus maps Midtrans's transaction_status vocabulary onto the
// transaction status vocabulary, per §4.6.
func mapMidtransStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return "completed"
	case "expire":
		return "expired"
	case "deny", "cancel":
		return "failed"
	default:
		return "pending"
	}
}
