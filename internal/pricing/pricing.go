// Package pricing computes discounted ticket prices and cart totals. The
// selection screen and the checkout screen both derive their figures from
// this package, so the two never drift apart. All functions are pure: no
// side effects, no network calls, and no failure modes. Malformed promotion
// data degrades to the undiscounted base price because the backend remains
// the final arbiter of the charged amount.
package pricing

import (
	"ticket-storefront/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountedUnitPrice returns the per-unit price after applying a promotion.
// An absent or unrecognized promotion leaves the base price unchanged; a
// discount never produces a negative price and never raises the price above
// base. A negative promotion value is malformed and is treated like an
// unrecognized kind.
func DiscountedUnitPrice(basePrice decimal.Decimal, promo *models.Promotion) decimal.Decimal {
	if promo == nil {
		return basePrice
	}

	if promo.Value.IsNegative() {
		return basePrice
	}

	switch promo.Kind {
	case models.PromotionPercentage:
		discounted := basePrice.Sub(basePrice.Mul(promo.Value).Div(oneHundred))
		return clampNonNegative(discounted)
	case models.PromotionFixedAmount:
		return clampNonNegative(basePrice.Sub(promo.Value))
	default:
		return basePrice
	}
}

// CartTotal returns the sum of discounted line subtotals for the cart.
// Lines with a non-positive quantity contribute nothing. An empty cart
// totals zero.
func CartTotal(cart *models.Cart) decimal.Decimal {
	if cart == nil {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, line := range cart.Lines {
		total = total.Add(LineSubtotal(line, cart.Promotion))
	}
	return total
}

// LineSubtotal returns the discounted subtotal for a single cart line.
func LineSubtotal(line models.CartLine, promo *models.Promotion) decimal.Decimal {
	if line.Quantity <= 0 {
		return decimal.Zero
	}

	unit := DiscountedUnitPrice(line.UnitPriceBase, promo)
	return unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// FormatAmount renders an amount for display with two decimal places.
// Rounding happens only here, at presentation time.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
