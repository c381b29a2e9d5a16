package repositories

import (
	"context"
	"errors"

	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Promo, error)
	List(ctx context.Context) ([]models.Promo, error)
	Create(ctx context.Context, promo *models.Promo) error
	Update(ctx context.Context, code string, fields map[string]interface{}) error
	Delete(ctx context.Context, code string) error
	IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	RedemptionExists(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	CreateRedemption(ctx context.Context, tx *gorm.DB, redemption *models.PromoRedemption) error
}

type promoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*models.Promo, error) {
	var promo models.Promo
	err := r.db.WithContext(ctx).First(&promo, "code = ?", models.NormalizePromoCode(code)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

func (r *promoRepository) List(ctx context.Context) ([]models.Promo, error) {
	var promos []models.Promo
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promoRepository) Create(ctx context.Context, promo *models.Promo) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *promoRepository) Update(ctx context.Context, code string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Promo{}).Where("code = ?", models.NormalizePromoCode(code)).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promoRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", models.NormalizePromoCode(code)).Delete(&models.Promo{}).Error
}

// IncrementUsage bumps used_count unless max_uses is already reached.
func (r *promoRepository) IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&models.Promo{}).
		Where("code = ? AND (max_uses IS NULL OR used_count < max_uses)", models.NormalizePromoCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *promoRepository) RedemptionExists(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).Model(&models.PromoRedemption{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *promoRepository) CreateRedemption(ctx context.Context, tx *gorm.DB, redemption *models.PromoRedemption) error {
	return conn(r.db, tx).WithContext(ctx).Create(redemption).Error
}
