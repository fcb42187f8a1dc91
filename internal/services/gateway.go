package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GatewayConfig represents payment gateway configuration
type GatewayConfig struct {
	BaseURL     string
	SecretKey   string
	PublicKey   string
	Environment string // "sandbox" or "live"
	CallbackURL string
}

// GatewayClient handles the redirect-based payment path used by the
// marketplace purchase flow: initialize a transaction, send the buyer to
// the gateway's authorization URL, then verify the payment by reference
// when the gateway calls back. It is deliberately separate from the direct
// card-form checkout in CheckoutService.
type GatewayClient struct {
	config GatewayConfig
	client *http.Client
	logger *zap.Logger
}

// NewGatewayClient creates a new payment gateway client
func NewGatewayClient(config GatewayConfig, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// PaymentInitRequest represents a payment initialization request
type PaymentInitRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"` // minor currency units
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentRedirect contains the data needed to send the buyer to the gateway
type PaymentRedirect struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// PaymentVerification contains the verified state of a payment
type PaymentVerification struct {
	Reference string    `json:"reference"`
	Status    string    `json:"status"` // "success", "failed", "pending"
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
}

// gatewayEnvelope is the gateway's standard response wrapper
type gatewayEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GatewayError represents an error response from the payment gateway
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Message)
}

// InitializePayment starts a redirect-based payment and returns the
// authorization URL the buyer must be sent to.
func (g *GatewayClient) InitializePayment(ctx context.Context, email string, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentRedirect, error) {
	req := &PaymentInitRequest{
		Email:       email,
		Amount:      toMinorUnits(amount),
		Currency:    currency,
		Reference:   g.generateReference(),
		CallbackURL: g.config.CallbackURL,
		Metadata:    metadata,
	}

	var redirect PaymentRedirect
	if err := g.call(ctx, http.MethodPost, "/transaction/initialize", req, &redirect); err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	g.logger.Info("payment initialized",
		zap.String("reference", redirect.Reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", currency))

	return &redirect, nil
}

// VerifyPayment verifies a payment by its reference after the gateway
// redirects the buyer back.
func (g *GatewayClient) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	var verification PaymentVerification
	path := fmt.Sprintf("/transaction/verify/%s", reference)
	if err := g.call(ctx, http.MethodGet, path, nil, &verification); err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	g.logger.Info("payment verified",
		zap.String("reference", reference),
		zap.String("status", verification.Status))

	return &verification, nil
}

// VerifyWebhookSignature verifies the gateway's webhook signature
func (g *GatewayClient) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.config.SecretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// call performs a gateway API request and unwraps the response envelope
func (g *GatewayClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	if resp.StatusCode != http.StatusOK || !envelope.Status {
		return &GatewayError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}

// generateReference generates a unique transaction reference
func (g *GatewayClient) generateReference() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// toMinorUnits converts a decimal currency amount to minor units. The amount
// is rounded to two decimals first so the charged figure matches the
// two-decimal figure shown to the buyer.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}
