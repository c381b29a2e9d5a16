package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            string           `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Slug          string           `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Price         decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(16,2)" json:"original_price,omitempty"`
	Images        []string         `gorm:"type:text;serializer:json" json:"images"`
	Stock         int              `gorm:"not null;default:0" json:"stock"`
	Category      string           `gorm:"size:100;index" json:"category"`
	Featured      bool             `gorm:"default:false;index" json:"featured"`
	Benefits      string           `gorm:"type:text" json:"benefits,omitempty"`
	ShortDesc     string           `gorm:"type:text" json:"short_desc,omitempty"`
	Description   string           `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title + "-" + p.ID[:6])
	}
	return
}

func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

const LowStockThreshold = 5
