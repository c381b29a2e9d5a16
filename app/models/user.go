package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User rows hold back-office accounts. Storefront shoppers authenticate with
// bearer tokens and are identified only by the token subject.
type User struct {
	ID        string         `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Email     string         `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'admin';not null" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
