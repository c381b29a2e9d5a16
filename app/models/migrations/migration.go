package migrations

import (
	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Driver{},
		&models.Order{},
		&models.OrderItem{},
		&models.Promo{},
		&models.PromoRedemption{},
		&models.DeliveryCharge{},
		&models.Review{},
		&models.NewsletterSubscriber{},
	)
}
