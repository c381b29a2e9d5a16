package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/services"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, req services.CheckoutRequest, idempotencyKey string) (*services.CheckoutResult, error)
}

type DeliveryResolver interface {
	Resolve(ctx context.Context, state, city string, subtotal decimal.Decimal) (*services.DeliveryQuote, error)
}

type PromoValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promo, error)
}

type OrderReader interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, orderID, provider, reference string) (*models.Order, error)
	HandlePaystackWebhook(ctx context.Context, body []byte, signature string) error
	HandleFlutterwaveWebhook(ctx context.Context, body []byte, hash string) error
}

type ProductReader interface {
	List(ctx context.Context, category string, featured *bool, q string, page, limit int) (*services.ProductPage, error)
	Get(ctx context.Context, idOrSlug string) (*models.Product, error)
}

type ReviewStore interface {
	Create(ctx context.Context, in services.ReviewInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) (*services.ProductReviews, error)
}

type Subscriptions interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
}
