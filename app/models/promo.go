package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

type Promo struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Code            string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	DiscountType    string          `gorm:"size:10;not null" json:"discount_type"`
	Value           decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"value"`
	ApplyToDelivery bool            `gorm:"default:false" json:"apply_to_delivery"`
	MinSubtotal     decimal.Decimal `gorm:"type:decimal(16,2);default:0" json:"min_subtotal"`
	MaxUses         *int            `json:"max_uses,omitempty"`
	UsedCount       int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Active          bool            `gorm:"default:true" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Promo) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Code = NormalizePromoCode(p.Code)
	return
}

func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *Promo) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

func (p *Promo) Exhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}

type PromoRedemption struct {
	ID        string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	PromoCode string          `gorm:"size:50;not null;index" json:"promo_code"`
	OrderID   string          `gorm:"size:36;not null;uniqueIndex" json:"order_id"`
	UserID    string          `gorm:"size:36;index" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r *PromoRedemption) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
