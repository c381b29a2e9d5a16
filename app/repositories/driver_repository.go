package repositories

import (
	"context"
	"errors"

	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

type DriverRepository interface {
	List(ctx context.Context) ([]models.Driver, error)
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	Delete(ctx context.Context, id string) error
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) List(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&drivers).Error
	return drivers, err
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *driverRepository) Update(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *driverRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Driver{}, "id = ?", id).Error
}
