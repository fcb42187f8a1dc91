package services

import (
	"context"

	"ticket-storefront/internal/models"

	"github.com/shopspring/decimal"
)

// TicketingBackendInterface defines the interface for the remote ticketing API
type TicketingBackendInterface interface {
	GetEvent(ctx context.Context, eventID int) (*models.Event, error)
	GetTicketTypes(ctx context.Context, eventID int) ([]*models.TicketType, error)
	IssueTicket(ctx context.Context, req *IssueTicketRequest) (*models.Ticket, error)
	ValidatePromotion(ctx context.Context, code string, eventID int) (*models.Promotion, error)
}

// PaymentGatewayInterface defines the interface for the redirect payment gateway
type PaymentGatewayInterface interface {
	InitializePayment(ctx context.Context, email string, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentRedirect, error)
	VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// CheckoutSubmitter defines the interface for checkout submission
type CheckoutSubmitter interface {
	Submit(ctx context.Context, cartKey string, card *models.CardDetails) (*SubmissionResult, error)
}
