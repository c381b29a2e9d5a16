package calc

import (
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns percent of baseTotal rounded to kobo.
func CalculateDiscount(baseTotal, discountPercent decimal.Decimal) decimal.Decimal {
	return baseTotal.Mul(discountPercent).Div(hundred).Round(2)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// PromoDiscount is the amount a promo takes off. The base is the delivery
// charge when the promo applies to delivery, the subtotal otherwise, and the
// result never exceeds that base.
func PromoDiscount(promo *models.Promo, subtotal, delivery decimal.Decimal) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}

	base := nonNegative(subtotal)
	if promo.ApplyToDelivery {
		base = nonNegative(delivery)
	}

	switch promo.DiscountType {
	case models.DiscountPercent:
		return clamp(CalculateDiscount(base, promo.Value), decimal.Zero, base)
	case models.DiscountFixed:
		return clamp(promo.Value, decimal.Zero, base)
	default:
		return decimal.Zero
	}
}
