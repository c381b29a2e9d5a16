package repositories

import (
	"context"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

// Subscribe reports whether a new row was created.
func (r *newsletterRepository) Subscribe(ctx context.Context, email string) (bool, error) {
	sub := models.NewsletterSubscriber{Email: strings.ToLower(strings.TrimSpace(email))}
	res := r.db.WithContext(ctx).Where("email = ?", sub.Email).FirstOrCreate(&sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *newsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Delete(&models.NewsletterSubscriber{}).Error
}

func (r *newsletterRepository) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var subs []models.NewsletterSubscriber
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *newsletterRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.NewsletterSubscriber{})
	return res.RowsAffected, res.Error
}
