package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-storefront/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BackendConfig represents ticketing backend API configuration
type BackendConfig struct {
	BaseURL      string
	ServiceToken string
}

// BackendClient calls the remote ticketing API that owns events, ticket
// types, promotions and ticket issuance. This service holds no durable
// state of its own; the backend is authoritative for all of it.
type BackendClient struct {
	config BackendConfig
	client *http.Client
	logger *zap.Logger
}

// NewBackendClient creates a client for the ticketing backend API.
func NewBackendClient(config BackendConfig, logger *zap.Logger) *BackendClient {
	return &BackendClient{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// IssueTicketRequest represents a single-unit ticket issuance request.
// The backend does not support batch-quantity issuance; one request
// creates exactly one ticket record.
type IssueTicketRequest struct {
	EventID      int             `json:"event_id"`
	TicketTypeID int             `json:"ticket_type_id"`
	Price        decimal.Decimal `json:"price"`
	PromoCode    string          `json:"promo_code,omitempty"`
}

// promotionValidationRequest represents a promotion validation request
type promotionValidationRequest struct {
	Code    string `json:"code"`
	EventID int    `json:"event_id"`
}

// BackendError represents an error response from the ticketing backend
type BackendError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ticketing backend error (status %d): %s", e.StatusCode, e.Message)
}

// GetEvent retrieves an event by ID.
func (c *BackendClient) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	var event models.Event
	if err := c.get(ctx, fmt.Sprintf("/events/%d", eventID), &event); err != nil {
		if isNotFound(err) {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetTicketTypes retrieves the ticket types for an event, including base
// prices and remaining inventory.
func (c *BackendClient) GetTicketTypes(ctx context.Context, eventID int) ([]*models.TicketType, error) {
	var ticketTypes []*models.TicketType
	if err := c.get(ctx, fmt.Sprintf("/events/%d/ticket-types", eventID), &ticketTypes); err != nil {
		if isNotFound(err) {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}
	return ticketTypes, nil
}

// IssueTicket creates one ticket record for one purchased unit.
func (c *BackendClient) IssueTicket(ctx context.Context, req *IssueTicketRequest) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.post(ctx, "/tickets", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ValidatePromotion asks the backend whether a promotion code applies to an
// event. An invalid or expired code maps to models.ErrPromotionRejected.
func (c *BackendClient) ValidatePromotion(ctx context.Context, code string, eventID int) (*models.Promotion, error) {
	req := &promotionValidationRequest{Code: code, EventID: eventID}

	var promo models.Promotion
	if err := c.post(ctx, "/promotions/validate", req, &promo); err != nil {
		var backendErr *BackendError
		if errors.As(err, &backendErr) && backendErr.StatusCode >= 400 && backendErr.StatusCode < 500 {
			c.logger.Info("promotion rejected by backend",
				zap.String("code", code),
				zap.Int("event_id", eventID),
				zap.String("reason", backendErr.Message))
			return nil, fmt.Errorf("%w: %s", models.ErrPromotionRejected, backendErr.Message)
		}
		return nil, err
	}

	return &promo, nil
}

// get performs a GET request against the backend API
func (c *BackendClient) get(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(httpReq, out)
}

// post performs a POST request against the backend API
func (c *BackendClient) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *BackendClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.config.ServiceToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleAPIError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}

	return nil
}

// handleAPIError maps backend error responses to BackendError values
func (c *BackendClient) handleAPIError(statusCode int, body []byte) error {
	backendErr := &BackendError{StatusCode: statusCode}
	if err := json.Unmarshal(body, backendErr); err != nil || backendErr.Message == "" {
		backendErr.Message = string(body)
	}
	return backendErr
}

func isNotFound(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusNotFound
}
