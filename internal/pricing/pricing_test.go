package pricing

import (
	"testing"

	"ticket-storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		promo *models.Promotion
		want  string
	}{
		{
			name:  "no promotion returns base price",
			base:  "50.00",
			promo: nil,
			want:  "50.00",
		},
		{
			name: "percentage discount",
			base: "50.00",
			promo: &models.Promotion{
				Code: "SAVE20", Kind: models.PromotionPercentage, Value: dec("20"),
			},
			want: "40.00",
		},
		{
			name: "fixed amount discount",
			base: "50.00",
			promo: &models.Promotion{
				Code: "MINUS10", Kind: models.PromotionFixedAmount, Value: dec("10"),
			},
			want: "40.00",
		},
		{
			name: "fixed amount larger than price clamps to zero",
			base: "10.00",
			promo: &models.Promotion{
				Code: "MINUS15", Kind: models.PromotionFixedAmount, Value: dec("15"),
			},
			want: "0.00",
		},
		{
			name: "100 percent discount reaches zero",
			base: "75.50",
			promo: &models.Promotion{
				Code: "FREE", Kind: models.PromotionPercentage, Value: dec("100"),
			},
			want: "0.00",
		},
		{
			name: "unrecognized kind falls back to base price",
			base: "30.00",
			promo: &models.Promotion{
				Code: "WEIRD", Kind: "BUY_ONE_GET_ONE", Value: dec("50"),
			},
			want: "30.00",
		},
		{
			name: "negative percentage value falls back to base price",
			base: "50.00",
			promo: &models.Promotion{
				Code: "BROKEN", Kind: models.PromotionPercentage, Value: dec("-10"),
			},
			want: "50.00",
		},
		{
			name: "negative fixed amount falls back to base price",
			base: "50.00",
			promo: &models.Promotion{
				Code: "BROKEN", Kind: models.PromotionFixedAmount, Value: dec("-5"),
			},
			want: "50.00",
		},
		{
			name:  "zero base price stays zero",
			base:  "0",
			promo: &models.Promotion{Kind: models.PromotionPercentage, Value: dec("20")},
			want:  "0.00",
		},
		{
			name: "fractional percentage keeps exact decimals",
			base: "33.33",
			promo: &models.Promotion{
				Kind: models.PromotionPercentage, Value: dec("10"),
			},
			want: "29.997",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedUnitPrice(dec(tt.base), tt.promo)
			assert.True(t, got.Equal(dec(tt.want)),
				"got %s, want %s", got.String(), tt.want)
		})
	}
}

func TestDiscountedUnitPrice_Deterministic(t *testing.T) {
	promo := &models.Promotion{Kind: models.PromotionPercentage, Value: dec("17.5")}
	base := dec("123.45")

	first := DiscountedUnitPrice(base, promo)
	second := DiscountedUnitPrice(base, promo)

	assert.True(t, first.Equal(second), "identical inputs must yield identical output")
}

func TestDiscountedUnitPrice_NeverNegative(t *testing.T) {
	bases := []string{"0", "0.01", "1", "9.99", "100", "12345.67"}
	promos := []*models.Promotion{
		nil,
		{Kind: models.PromotionPercentage, Value: dec("0")},
		{Kind: models.PromotionPercentage, Value: dec("50")},
		{Kind: models.PromotionPercentage, Value: dec("100")},
		{Kind: models.PromotionFixedAmount, Value: dec("5")},
		{Kind: models.PromotionFixedAmount, Value: dec("99999")},
		{Kind: "UNKNOWN", Value: dec("10")},
	}

	for _, base := range bases {
		for _, promo := range promos {
			got := DiscountedUnitPrice(dec(base), promo)
			assert.False(t, got.IsNegative(),
				"base=%s promo=%+v produced negative price %s", base, promo, got)
		}
	}
}

func TestDiscountedUnitPrice_NeverExceedsBase(t *testing.T) {
	bases := []string{"0", "0.01", "1", "9.99", "50.00", "12345.67"}
	promos := []*models.Promotion{
		nil,
		{Kind: models.PromotionPercentage, Value: dec("20")},
		{Kind: models.PromotionPercentage, Value: dec("-10")},
		{Kind: models.PromotionFixedAmount, Value: dec("5")},
		{Kind: models.PromotionFixedAmount, Value: dec("-5")},
		{Kind: "UNKNOWN", Value: dec("-50")},
	}

	for _, base := range bases {
		for _, promo := range promos {
			got := DiscountedUnitPrice(dec(base), promo)
			assert.True(t, got.LessThanOrEqual(dec(base)),
				"base=%s promo=%+v raised price to %s", base, promo, got)
		}
	}
}

func TestCartTotal(t *testing.T) {
	t.Run("nil cart totals zero", func(t *testing.T) {
		assert.True(t, CartTotal(nil).IsZero())
	})

	t.Run("empty cart totals zero", func(t *testing.T) {
		cart := &models.Cart{EventID: 1}
		assert.True(t, CartTotal(cart).IsZero())
	})

	t.Run("single line without promotion", func(t *testing.T) {
		cart := &models.Cart{
			EventID: 1,
			Lines: []models.CartLine{
				{TicketTypeID: 1, UnitPriceBase: dec("50.00"), Quantity: 2},
			},
		}
		assert.True(t, CartTotal(cart).Equal(dec("100.00")))
	})

	t.Run("percentage promotion applies to every line", func(t *testing.T) {
		cart := &models.Cart{
			EventID: 1,
			Lines: []models.CartLine{
				{TicketTypeID: 1, UnitPriceBase: dec("50.00"), Quantity: 2},
				{TicketTypeID: 2, UnitPriceBase: dec("20.00"), Quantity: 1},
			},
			Promotion: &models.Promotion{
				Code: "SAVE20", Kind: models.PromotionPercentage, Value: dec("20"),
			},
		}
		// (50*0.8)*2 + (20*0.8)*1 = 80 + 16
		assert.True(t, CartTotal(cart).Equal(dec("96.00")))
	})

	t.Run("fixed discount clamps per line before multiplying", func(t *testing.T) {
		cart := &models.Cart{
			EventID: 1,
			Lines: []models.CartLine{
				{TicketTypeID: 1, UnitPriceBase: dec("10.00"), Quantity: 1},
			},
			Promotion: &models.Promotion{
				Code: "MINUS15", Kind: models.PromotionFixedAmount, Value: dec("15"),
			},
		}
		assert.True(t, CartTotal(cart).IsZero())
	})

	t.Run("zero quantity lines contribute nothing", func(t *testing.T) {
		cart := &models.Cart{
			EventID: 1,
			Lines: []models.CartLine{
				{TicketTypeID: 1, UnitPriceBase: dec("50.00"), Quantity: 0},
				{TicketTypeID: 2, UnitPriceBase: dec("25.00"), Quantity: 1},
			},
		}
		assert.True(t, CartTotal(cart).Equal(dec("25.00")))
	})

	t.Run("no floating point drift across many lines", func(t *testing.T) {
		cart := &models.Cart{EventID: 1}
		for i := 0; i < 1000; i++ {
			cart.Lines = append(cart.Lines, models.CartLine{
				TicketTypeID:  i + 1,
				UnitPriceBase: dec("0.10"),
				Quantity:      1,
			})
		}
		assert.True(t, CartTotal(cart).Equal(dec("100.00")),
			"1000 x 0.10 must accumulate to exactly 100.00, got %s", CartTotal(cart))
	})
}

func TestCartTotal_CrossScreenConsistency(t *testing.T) {
	// The selection screen and the checkout screen run the same computation
	// independently; their results must be identical to the cent.
	cart := &models.Cart{
		EventID: 7,
		Lines: []models.CartLine{
			{TicketTypeID: 1, UnitPriceBase: dec("33.33"), Quantity: 3},
			{TicketTypeID: 2, UnitPriceBase: dec("19.99"), Quantity: 2},
		},
		Promotion: &models.Promotion{
			Code: "SAVE17", Kind: models.PromotionPercentage, Value: dec("17.5"),
		},
	}

	atSelection := CartTotal(cart)
	atCheckout := CartTotal(cart)

	assert.True(t, atSelection.Equal(atCheckout))
	assert.Equal(t, FormatAmount(atSelection), FormatAmount(atCheckout))
}

func TestCartTotal_Monotonicity(t *testing.T) {
	promos := []*models.Promotion{
		nil,
		{Kind: models.PromotionPercentage, Value: dec("35")},
		{Kind: models.PromotionFixedAmount, Value: dec("12")},
		{Kind: models.PromotionFixedAmount, Value: dec("500")},
	}

	for _, promo := range promos {
		cart := &models.Cart{
			EventID:   1,
			Promotion: promo,
			Lines: []models.CartLine{
				{TicketTypeID: 1, UnitPriceBase: dec("40.00"), Quantity: 1},
				{TicketTypeID: 2, UnitPriceBase: dec("15.50"), Quantity: 2},
			},
		}

		for step := 0; step < 5; step++ {
			before := CartTotal(cart)
			cart.Lines[0].Quantity++
			after := CartTotal(cart)

			assert.True(t, after.GreaterThanOrEqual(before),
				"increasing quantity decreased total: %s -> %s (promo=%+v)",
				before, after, promo)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.00", FormatAmount(dec("100")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "29.99", FormatAmount(dec("29.99")))
	assert.Equal(t, "30.00", FormatAmount(dec("29.997")))
}
