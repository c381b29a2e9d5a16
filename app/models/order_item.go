package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID        string          `gorm:"primaryKey;type:varchar(36);not null;uniqueIndex" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Title     string          `gorm:"type:varchar(255);not null" json:"title"`
	Image     string          `gorm:"type:text" json:"image,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"line_total"`

	// StockReserved is set once the item's units were taken from stock.
	StockReserved bool      `gorm:"default:false" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}
