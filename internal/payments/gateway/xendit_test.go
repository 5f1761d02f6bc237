package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/internal/domain/money"
)

func TestXenditSupportsCurrency(t *testing.T) {
	x := NewXenditClient("key", "secret", "")
	assert.True(t, x.SupportsCurrency(money.IDR))
	assert.True(t, x.SupportsCurrency(money.MYR))
	assert.False(t, x.SupportsCurrency(money.USD))
}

func TestXenditVerifyWebhook(t *testing.T) {
	x := NewXenditClient("key", "topsecret", "")
	payload := []byte(`{"id":"inv_123","status":"PAID"}`)

	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(payload)
	validSignature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, x.VerifyWebhook(validSignature, payload))
	assert.False(t, x.VerifyWebhook("deadbeef", payload))
	assert.False(t, x.VerifyWebhook(validSignature, []byte(`{"id":"tampered"}`)))
}

func TestXenditProcessWebhookMapsStatus(t *testing.T) {
	x := NewXenditClient("key", "secret", "")

	tests := []struct {
		rawStatus string
		want      string
	}{
		{"PAID", "completed"},
		{"EXPIRED", "expired"},
		{"PENDING", "pending"},
		{"UNKNOWN_VALUE", "pending"},
	}

	for _, tt := range tests {
		payload := []byte(`{"id":"inv_1","external_id":"ext-1","status":"` + tt.rawStatus + `","amount":100,"payment_method":"BANK_TRANSFER"}`)
		out, err := x.ProcessWebhook(payload)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.Status, "raw status %q", tt.rawStatus)
		assert.Equal(t, "inv_1", out.GatewayReference)
		assert.Equal(t, "ext-1", out.ExternalID)
	}
}

func TestXenditProcessWebhookDefaultsUnknownPaymentMethod(t *testing.T) {
	x := NewXenditClient("key", "secret", "")
	payload := []byte(`{"id":"inv_2","external_id":"ext-2","status":"PAID","amount":50}`)
	out, err := x.ProcessWebhook(payload)
	require.NoError(t, err)
	assert.Equal(t, "unknown", out.PaymentMethod)
}

func TestXenditProcessWebhookRejectsMalformedPayload(t *testing.T) {
	x := NewXenditClient("key", "secret", "")
	_, err := x.ProcessWebhook([]byte(`not json`))
	assert.Error(t, err)
}

func TestBuildInstallmentExternalID(t *testing.T) {
	got := BuildInstallmentExternalID("invoice-42", 3)
	assert.Equal(t, "invoice-42-installment-3", got)
}
