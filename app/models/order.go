package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusCancelled: true},
	OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true, OrderStatusRefunded: true},
	OrderStatusShipped:    {OrderStatusDelivered: true, OrderStatusRefunded: true},
	OrderStatusDelivered:  {OrderStatusRefunded: true},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return len(validNext[s]) == 0
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

const (
	ProviderPaystack    = "paystack"
	ProviderFlutterwave = "flutterwave"
	ProviderManual      = "manual"
)

type Order struct {
	ID     string      `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID string      `gorm:"size:36;index" json:"user_id"`
	Email  string      `gorm:"size:255;index;not null" json:"email"`
	Status OrderStatus `gorm:"size:20;index;default:'pending'" json:"status"`

	PaymentStatus         string     `gorm:"size:20;default:'unpaid'" json:"payment_status"`
	PaymentProvider       string     `gorm:"size:20" json:"payment_provider"`
	ProviderReference     string     `gorm:"size:100;index" json:"provider_reference,omitempty"`
	ProviderTransactionID string     `gorm:"size:100" json:"provider_transaction_id,omitempty"`
	PaymentURL            string     `gorm:"type:text" json:"payment_url,omitempty"`
	PaidAt                *time.Time `json:"paid_at,omitempty"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(16,2);default:0" json:"discount_amount"`
	PromoCode      string          `gorm:"size:50" json:"promo_code,omitempty"`
	DeliveryCharge decimal.Decimal `gorm:"type:decimal(16,2);default:0" json:"delivery_charge"`
	Total          decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`

	ShippingAddress ShippingAddress `gorm:"type:text;serializer:json" json:"shipping_address"`
	TrackingInfo    []TrackingEvent `gorm:"type:text;serializer:json" json:"tracking_info"`

	DriverID *string `gorm:"size:36;index" json:"driver_id,omitempty"`
	Driver   *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	OrderItems []OrderItem `json:"order_items"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type TrackingEvent struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// ShortID is the 8-character prefix shown to customers.
func (o *Order) ShortID() string {
	if len(o.ID) < 8 {
		return o.ID
	}
	return o.ID[:8]
}
