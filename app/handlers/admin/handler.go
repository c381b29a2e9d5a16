package admin

import (
	"context"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/tkbglow/glow-api/app/utils/sessions"
	"github.com/unrolled/render"
)

type OrderManager interface {
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id string) (*models.Order, error)
	Track(ctx context.Context, id, status, message string) (*models.Order, error)
	AssignDriver(ctx context.Context, id, driverID string) (*models.Order, error)
	Notify(ctx context.Context, id, kind, message string) (string, string, error)
	SendEmail(ctx context.Context, id, kind string, rider *services.RiderInfo) error
}

type PaymentManager interface {
	MarkPaid(ctx context.Context, orderID, provider, reference, transactionID string) (*models.Order, error)
	Refund(ctx context.Context, orderID string) (*models.Order, error)
	Reinitialize(ctx context.Context, orderID string) (*services.CheckoutResult, error)
	ProviderHealth(ctx context.Context, provider string) error
}

type PromoManager interface {
	List(ctx context.Context) ([]models.Promo, error)
	Create(ctx context.Context, in services.PromoInput) (*models.Promo, error)
	Update(ctx context.Context, code string, in services.PromoUpdate) (*models.Promo, error)
	Delete(ctx context.Context, code string) error
}

type ProductManager interface {
	Create(ctx context.Context, in services.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in services.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type DeliveryManager interface {
	List(ctx context.Context) ([]models.DeliveryCharge, error)
	Create(ctx context.Context, in services.DeliveryChargeInput) (*models.DeliveryCharge, error)
	Update(ctx context.Context, id string, in services.DeliveryChargeInput) (*models.DeliveryCharge, error)
	Delete(ctx context.Context, id string) error
}

type DriverManager interface {
	List(ctx context.Context) ([]models.Driver, error)
	Create(ctx context.Context, in services.DriverInput) (*models.Driver, error)
	Update(ctx context.Context, id string, in services.DriverInput) (*models.Driver, error)
	Delete(ctx context.Context, id string) error
}

type NewsletterManager interface {
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
	Clear(ctx context.Context) (int64, error)
	Send(ctx context.Context, subject, html string) (*services.SendResult, error)
}

type Analytics interface {
	Stats(ctx context.Context) (*services.DashboardStats, error)
	Charts(ctx context.Context) (*services.DashboardCharts, error)
	Customer(ctx context.Context, userID string) (*services.CustomerDetail, error)
}

type OrderExporter interface {
	WriteOrders(ctx context.Context, f repositories.OrderFilter, w io.Writer) error
}

type Authenticator interface {
	AdminLogin(ctx context.Context, email, password string) (*models.User, error)
}

type LiveFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type AdminHandler struct {
	render     *render.Render
	validator  *validator.Validate
	sessions   sessions.SessionStore
	auth       Authenticator
	orders     OrderManager
	payments   PaymentManager
	promos     PromoManager
	products   ProductManager
	delivery   DeliveryManager
	drivers    DriverManager
	newsletter NewsletterManager
	analytics  Analytics
	exporter   OrderExporter
	feed       LiveFeed
}

func NewAdminHandler(
	render *render.Render,
	validator *validator.Validate,
	sessions sessions.SessionStore,
	auth Authenticator,
	orders OrderManager,
	payments PaymentManager,
	promos PromoManager,
	products ProductManager,
	delivery DeliveryManager,
	drivers DriverManager,
	newsletter NewsletterManager,
	analytics Analytics,
	exporter OrderExporter,
	feed LiveFeed,
) *AdminHandler {
	return &AdminHandler{
		render:     render,
		validator:  validator,
		sessions:   sessions,
		auth:       auth,
		orders:     orders,
		payments:   payments,
		promos:     promos,
		products:   products,
		delivery:   delivery,
		drivers:    drivers,
		newsletter: newsletter,
		analytics:  analytics,
		exporter:   exporter,
		feed:       feed,
	}
}

// bind decodes and validates a JSON body, writing the error response itself.
func (h *AdminHandler) bind(w http.ResponseWriter, r *http.Request, where string, dst any) bool {
	if err := helpers.DecodeJSON(r, dst); err != nil {
		helpers.WriteError(h.render, w, where, err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		helpers.WriteValidation(h.render, w, err)
		return false
	}
	return true
}
