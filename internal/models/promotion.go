package models

import "github.com/shopspring/decimal"

// PromotionKind represents the discount type of a promotion
type PromotionKind string

const (
	PromotionPercentage  PromotionKind = "PERCENTAGE"
	PromotionFixedAmount PromotionKind = "FIXED_AMOUNT"
)

// Promotion represents a backend-validated promotion code. At most one
// promotion is active on a cart at a time. The code is case-sensitive as
// issued by the backend and is never normalized here.
type Promotion struct {
	Code  string          `json:"code"`
	Kind  PromotionKind   `json:"kind"`
	Value decimal.Decimal `json:"value"` // percentage points (0-100) or absolute currency units
}

// IsRecognized returns true if the promotion kind is one this service
// knows how to apply. Unrecognized kinds degrade to no discount.
func (p *Promotion) IsRecognized() bool {
	switch p.Kind {
	case PromotionPercentage, PromotionFixedAmount:
		return true
	default:
		return false
	}
}
