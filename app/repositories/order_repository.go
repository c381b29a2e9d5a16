package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

// OrderSummary is the slim projection the dashboard aggregates over.
type OrderSummary struct {
	ID            string
	UserID        string
	Email         string
	Status        models.OrderStatus
	PaymentStatus string
	Total         decimal.Decimal
	CreatedAt     time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	Save(ctx context.Context, tx *gorm.DB, order *models.Order) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
	SetStockReserved(ctx context.Context, tx *gorm.DB, itemIDs []string, reserved bool) error
	Summaries(ctx context.Context) ([]OrderSummary, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).Preload("OrderItems").Preload("Driver").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetForUpdate locks the order row for the rest of tx.
func (r *gormOrderRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error) {
	var order models.Order

	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := conn(r.db, tx).WithContext(ctx).Where("order_id = ?", id).Find(&order.OrderItems).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).Preload("OrderItems").First(&order, "provider_reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order

	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if kw := strings.TrimSpace(f.Query); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(id) LIKE ?", like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Preload("OrderItems").Preload("Driver").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormOrderRepository) Save(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	order.UpdatedAt = time.Now()
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *gormOrderRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return conn(r.db, tx).WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *gormOrderRepository) SetStockReserved(ctx context.Context, tx *gorm.DB, itemIDs []string, reserved bool) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id IN ?", itemIDs).
		Update("stock_reserved", reserved).Error
}

func (r *gormOrderRepository) Summaries(ctx context.Context) ([]OrderSummary, error) {
	var rows []OrderSummary
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("id, user_id, email, status, payment_status, total, created_at").
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}
