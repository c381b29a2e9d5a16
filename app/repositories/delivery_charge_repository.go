package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

type DeliveryChargeRepository interface {
	ListActiveByState(ctx context.Context, state string) ([]models.DeliveryCharge, error)
	List(ctx context.Context) ([]models.DeliveryCharge, error)
	GetByID(ctx context.Context, id string) (*models.DeliveryCharge, error)
	Create(ctx context.Context, charge *models.DeliveryCharge) error
	Update(ctx context.Context, charge *models.DeliveryCharge) error
	Delete(ctx context.Context, id string) error
}

type deliveryChargeRepository struct {
	db *gorm.DB
}

func NewDeliveryChargeRepository(db *gorm.DB) DeliveryChargeRepository {
	return &deliveryChargeRepository{db: db}
}

func (r *deliveryChargeRepository) ListActiveByState(ctx context.Context, state string) ([]models.DeliveryCharge, error) {
	var rows []models.DeliveryCharge
	err := r.db.WithContext(ctx).
		Where("LOWER(state) = ? AND active = ?", strings.ToLower(strings.TrimSpace(state)), true).
		Find(&rows).Error
	return rows, err
}

func (r *deliveryChargeRepository) List(ctx context.Context) ([]models.DeliveryCharge, error) {
	var rows []models.DeliveryCharge
	err := r.db.WithContext(ctx).Order("state ASC, city ASC, min_subtotal ASC").Find(&rows).Error
	return rows, err
}

func (r *deliveryChargeRepository) GetByID(ctx context.Context, id string) (*models.DeliveryCharge, error) {
	var row models.DeliveryCharge
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *deliveryChargeRepository) Create(ctx context.Context, charge *models.DeliveryCharge) error {
	return r.db.WithContext(ctx).Create(charge).Error
}

func (r *deliveryChargeRepository) Update(ctx context.Context, charge *models.DeliveryCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

func (r *deliveryChargeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryCharge{}, "id = ?", id).Error
}
