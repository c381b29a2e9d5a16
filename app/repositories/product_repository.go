package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Featured *bool
	Query    string
	Limit    int
	Offset   int
}

type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) (bool, error)
	IncrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) error
	Count(ctx context.Context) (int64, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db}
}

func (p *productRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	q := p.db.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if kw := strings.TrimSpace(f.Query); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(short_desc) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return p.first(ctx, "id = ?", id)
}

func (p *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return p.first(ctx, "slug = ?", slug)
}

func (p *productRepository) first(ctx context.Context, query string, arg any) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).Where(query, arg).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Create(product).Error
}

func (p *productRepository) Update(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Save(product).Error
}

func (p *productRepository) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// DecrementStock reports false when fewer than qty units are left.
func (p *productRepository) DecrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) (bool, error) {
	res := conn(p.db, tx).WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (p *productRepository) IncrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) error {
	return conn(p.db, tx).WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

func (p *productRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	return total, err
}

func (p *productRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).Where("stock <= ?", threshold).Order("stock ASC").Find(&products).Error
	return products, err
}
