package fakers

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
)

func DeliveryChargeFakers() []*models.DeliveryCharge {
	row := func(state, city string, charge, minSubtotal int64, notes string) *models.DeliveryCharge {
		return &models.DeliveryCharge{
			State:       state,
			City:        city,
			Charge:      decimal.NewFromInt(charge),
			MinSubtotal: decimal.NewFromInt(minSubtotal),
			Notes:       notes,
			Active:      true,
		}
	}
	return []*models.DeliveryCharge{
		row("Lagos", "", 2500, 0, "Lagos mainland and island"),
		row("Lagos", "Ikeja", 2000, 0, ""),
		row("Lagos", "Lekki", 3000, 0, ""),
		row("Lagos", "", 0, 50000, "Free delivery in Lagos above ₦50,000"),
		row("FCT", "", 4000, 0, "Abuja"),
		row("Rivers", "Port Harcourt", 4500, 0, ""),
		row("Oyo", "Ibadan", 3500, 0, ""),
	}
}

func PromoFaker() *models.Promo {
	maxUses := 100
	expires := time.Now().AddDate(0, 3, 0)
	return &models.Promo{
		Code:         "GLOW10",
		Description:  "10% off your order",
		DiscountType: models.DiscountPercent,
		Value:        decimal.NewFromInt(10),
		MinSubtotal:  decimal.NewFromInt(5000),
		MaxUses:      &maxUses,
		ExpiresAt:    &expires,
		Active:       true,
	}
}
