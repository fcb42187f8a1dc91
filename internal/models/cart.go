package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart represents a draft ticket selection for a single event, handed off
// from the selection screen to the checkout screen.
type Cart struct {
	ID         string     `json:"id"`
	EventID    int        `json:"event_id"`
	EventTitle string     `json:"event_title"`
	Lines      []CartLine `json:"lines"`
	Promotion  *Promotion `json:"promotion,omitempty"`
	ExpiresAt  int64      `json:"expires_at"` // Unix timestamp
}

// CartLine represents one selected ticket type and quantity.
type CartLine struct {
	TicketTypeID  int             `json:"ticket_type_id"`
	TicketName    string          `json:"ticket_name"`
	UnitPriceBase decimal.Decimal `json:"unit_price_base"` // canonical price before discount
	Quantity      int             `json:"quantity"`
	Remaining     int             `json:"remaining"` // inventory known at selection time
}

// IsEmpty returns true if the cart has no line with a positive quantity.
func (c *Cart) IsEmpty() bool {
	for _, line := range c.Lines {
		if line.Quantity > 0 {
			return false
		}
	}
	return true
}

// IsExpired returns true if the cart handoff window has elapsed.
func (c *Cart) IsExpired() bool {
	return c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt
}

// TotalUnits returns the number of individual tickets the cart represents.
func (c *Cart) TotalUnits() int {
	units := 0
	for _, line := range c.Lines {
		if line.Quantity > 0 {
			units += line.Quantity
		}
	}
	return units
}

// FindLine returns the line for a ticket type, or nil if not present.
func (c *Cart) FindLine(ticketTypeID int) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].TicketTypeID == ticketTypeID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Validate validates the cart line data
func (l *CartLine) Validate() error {
	if l.TicketTypeID <= 0 {
		return ErrInvalidTicketType
	}

	if l.Quantity < 0 {
		return ErrInvalidQuantity
	}

	if l.Remaining >= 0 && l.Quantity > l.Remaining {
		return ErrInsufficientStock
	}

	if l.UnitPriceBase.IsNegative() {
		return ErrInvalidPrice
	}

	return nil
}
