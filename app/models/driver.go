package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Driver struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	WhatsApp  string    `gorm:"column:whatsapp;size:20" json:"whatsapp,omitempty"`
	Vehicle   string    `gorm:"size:100" json:"vehicle,omitempty"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
