package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliveryCharge is one row of the shipping fee table. An empty City applies
// to the whole state.
type DeliveryCharge struct {
	ID          string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	State       string          `gorm:"size:100;not null;index" json:"state"`
	City        string          `gorm:"size:100;index" json:"city"`
	Charge      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"charge"`
	MinSubtotal decimal.Decimal `gorm:"type:decimal(16,2);default:0" json:"min_subtotal"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (d *DeliveryCharge) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}

func (d *DeliveryCharge) StateWide() bool {
	return d.City == ""
}
