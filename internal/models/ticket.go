package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketTypeStatus represents the sale status of a ticket type
type TicketTypeStatus string

const (
	TicketTypeOnSale  TicketTypeStatus = "on_sale"
	TicketTypeSoldOut TicketTypeStatus = "sold_out"
	TicketTypeClosed  TicketTypeStatus = "closed"
)

// TicketType represents a type of ticket for an event, as reported by the
// ticketing backend. Prices and remaining inventory are backend truth; the
// backend may still reject a purchase if inventory changed after this
// snapshot was taken.
type TicketType struct {
	ID        int              `json:"id"`
	EventID   int              `json:"event_id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Remaining int              `json:"remaining_quantity"`
	Status    TicketTypeStatus `json:"status"`
	SaleStart time.Time        `json:"sale_start"`
	SaleEnd   time.Time        `json:"sale_end"`
}

// Ticket represents an individual issued ticket record returned by the
// ticketing backend.
type Ticket struct {
	ID           int             `json:"id"`
	EventID      int             `json:"event_id"`
	TicketTypeID int             `json:"ticket_type_id"`
	Price        decimal.Decimal `json:"price"`
	QRCode       string          `json:"qr_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsAvailable returns true if tickets of this type can be purchased
func (tt *TicketType) IsAvailable() bool {
	now := time.Now()
	return tt.Remaining > 0 &&
		tt.Status == TicketTypeOnSale &&
		now.After(tt.SaleStart) &&
		now.Before(tt.SaleEnd)
}

// IsSoldOut returns true if no inventory remains
func (tt *TicketType) IsSoldOut() bool {
	return tt.Remaining <= 0 || tt.Status == TicketTypeSoldOut
}
