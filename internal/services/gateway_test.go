package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GatewayClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGatewayClient(GatewayConfig{
		BaseURL:     server.URL,
		SecretKey:   "sk_test_secret",
		Environment: "sandbox",
		CallbackURL: "http://localhost:8080/payment/callback",
	}, zap.NewNop())
}

func TestGatewayClient_InitializePayment(t *testing.T) {
	var received PaymentInitRequest

	client := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]string{
				"reference":         received.Reference,
				"authorization_url": "https://gateway.example/pay/abc",
				"access_code":       "abc",
			},
		})
	})

	redirect, err := client.InitializePayment(context.Background(),
		"buyer@example.com", decimal.RequireFromString("49.90"), "ARS",
		map[string]string{"listing_id": "55"})
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example/pay/abc", redirect.AuthorizationURL)
	assert.NotEmpty(t, redirect.Reference)
	assert.Equal(t, int64(4990), received.Amount, "amount must be sent in minor units")
	assert.Equal(t, "ARS", received.Currency)
	assert.Equal(t, "http://localhost:8080/payment/callback", received.CallbackURL)
}

func TestGatewayClient_InitializePaymentError(t *testing.T) {
	client := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "invalid currency",
		})
	})

	_, err := client.InitializePayment(context.Background(),
		"buyer@example.com", decimal.NewFromInt(10), "XXX", nil)
	require.Error(t, err)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "invalid currency", gatewayErr.Message)
}

func TestGatewayClient_VerifyPayment(t *testing.T) {
	client := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/TXN-123", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"reference": "TXN-123",
				"status":    "success",
				"amount":    4990,
				"currency":  "ARS",
			},
		})
	})

	verification, err := client.VerifyPayment(context.Background(), "TXN-123")
	require.NoError(t, err)

	assert.Equal(t, "success", verification.Status)
	assert.Equal(t, int64(4990), verification.Amount)
}

func TestGatewayClient_VerifyWebhookSignature(t *testing.T) {
	client := NewGatewayClient(GatewayConfig{SecretKey: "sk_test_secret"}, zap.NewNop())

	payload := []byte(`{"event":"charge.success","data":{"reference":"TXN-123"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(payload, valid))
	assert.False(t, client.VerifyWebhookSignature(payload, "forged"))
	assert.False(t, client.VerifyWebhookSignature([]byte(`tampered`), valid))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(4990), toMinorUnits(decimal.RequireFromString("49.90")))
	assert.Equal(t, int64(0), toMinorUnits(decimal.Zero))
	assert.Equal(t, int64(100), toMinorUnits(decimal.NewFromInt(1)))
	// rounds to the displayed two-decimal figure instead of truncating
	assert.Equal(t, int64(9000), toMinorUnits(decimal.RequireFromString("89.996")))
	assert.Equal(t, int64(8999), toMinorUnits(decimal.RequireFromString("89.994")))
}
