package calc

import (
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
)

type Line struct {
	Price    decimal.Decimal
	Quantity int
}

type Quote struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Delivery              decimal.Decimal `json:"delivery"`
	Discount              decimal.Decimal `json:"discount"`
	SubtotalAfterDiscount decimal.Decimal `json:"subtotal_after_discount"`
	DeliveryAfterDiscount decimal.Decimal `json:"delivery_after_discount"`
	Total                 decimal.Decimal `json:"total"`
}

func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 || l.Price.IsNegative() {
			continue
		}
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func CalculateQuote(subtotal, delivery decimal.Decimal, promo *models.Promo) Quote {
	subtotal = nonNegative(subtotal)
	delivery = nonNegative(delivery)
	discount := PromoDiscount(promo, subtotal, delivery)

	q := Quote{
		Subtotal:              subtotal,
		Delivery:              delivery,
		Discount:              discount,
		SubtotalAfterDiscount: subtotal,
		DeliveryAfterDiscount: delivery,
	}
	if promo != nil && promo.ApplyToDelivery {
		q.DeliveryAfterDiscount = nonNegative(delivery.Sub(discount))
	} else {
		q.SubtotalAfterDiscount = nonNegative(subtotal.Sub(discount))
	}
	q.Total = nonNegative(q.SubtotalAfterDiscount.Add(q.DeliveryAfterDiscount))
	return q
}

// Kobo converts naira to Paystack minor units.
func Kobo(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// WithinTolerance reports whether two totals differ by no more than tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
