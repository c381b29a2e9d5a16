package routes

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/handlers"
	"github.com/tkbglow/glow-api/app/handlers/admin"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/middlewares"
)

const requestTimeout = 30 * time.Second

func NewRouter(c *Container) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.JSONError(c.Render, w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.JSONError(c.Render, w, http.StatusMethodNotAllowed, "method not allowed")
	})

	guard := middlewares.NewAdminGuard(c.Env.AdminSecret, c.Sessions)
	trusted := trustedOrigins(c.Env.AllowedOrigin)
	csrf := middlewares.CSRF(c.CSRFKey, c.Env.IsProduction(), trusted)

	// adminOnly wraps a handler with authentication then CSRF protection.
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middlewares.Chain(h, guard.Require, csrf)
	}

	homeHandler := handlers.NewHomeHandler(c.Render, c.Products, c.HealthChecks())
	checkoutHandler := handlers.NewCheckoutHandler(c.Render, c.Validator, c.Checkout, c.Delivery, c.Promos)
	orderHandler := handlers.NewOrderHandler(c.Render, c.OrderSvc)
	paymentHandler := handlers.NewPaymentHandler(c.Render, c.Payments)
	productHandler := handlers.NewProductHandler(c.Render, c.Validator, c.Products, c.Reviews)
	newsletterHandler := handlers.NewNewsletterHandler(c.Render, c.Validator, c.Newsletter)
	adminHandler := admin.NewAdminHandler(
		c.Render,
		c.Validator,
		c.Sessions,
		c.Auth,
		c.OrderSvc,
		c.Payments,
		c.Promos,
		c.Products,
		c.Delivery,
		c.Drivers,
		c.Newsletter,
		c.Analytics,
		c.Export,
		c.Hub,
	)

	api := router.PathPrefix("/api").Subrouter()

	// storefront
	api.HandleFunc("", homeHandler.Home).Methods("GET")
	api.HandleFunc("/health", homeHandler.Health).Methods("GET")
	api.HandleFunc("/delivery/charge", checkoutHandler.DeliveryCharge).Methods("GET")
	api.HandleFunc("/promos/validate", checkoutHandler.ValidatePromo).Methods("GET")
	api.HandleFunc("/orders/create", checkoutHandler.CreateOrder).Methods("POST")
	api.Handle("/orders", middlewares.RequireCustomer(http.HandlerFunc(orderHandler.ListOrders))).Methods("GET")
	api.HandleFunc("/orders/{id}", orderHandler.GetOrder).Methods("GET")
	api.HandleFunc("/payments/verify", paymentHandler.Verify).Methods("GET")
	api.HandleFunc("/webhooks/paystack", paymentHandler.PaystackWebhook).Methods("POST")
	api.HandleFunc("/webhooks/flutterwave", paymentHandler.FlutterwaveWebhook).Methods("POST")
	api.HandleFunc("/products", productHandler.Products).Methods("GET")
	api.HandleFunc("/products/{id}", productHandler.Product).Methods("GET")
	api.HandleFunc("/products/{id}/reviews", productHandler.Reviews).Methods("GET")
	api.HandleFunc("/reviews", productHandler.CreateReview).Methods("POST")
	api.HandleFunc("/newsletter/subscribe", newsletterHandler.Subscribe).Methods("POST")
	api.HandleFunc("/newsletter/unsubscribe", newsletterHandler.Unsubscribe).Methods("POST")

	// admin session, CSRF only
	api.Handle("/admin/login", middlewares.Chain(http.HandlerFunc(adminHandler.Login), csrf)).Methods("POST")
	api.Handle("/admin/csrf", middlewares.Chain(http.HandlerFunc(adminHandler.CSRFToken), csrf)).Methods("GET")
	api.Handle("/admin/logout", adminOnly(adminHandler.Logout)).Methods("POST")

	// promos
	api.Handle("/promos", adminOnly(adminHandler.ListPromos)).Methods("GET")
	api.Handle("/promos", adminOnly(adminHandler.CreatePromo)).Methods("POST")
	api.Handle("/promos/{code}", adminOnly(adminHandler.UpdatePromo)).Methods("PUT")
	api.Handle("/promos/{code}", adminOnly(adminHandler.DeletePromo)).Methods("DELETE")

	// orders
	api.Handle("/orders/{id}/status", adminOnly(adminHandler.UpdateOrderStatus)).Methods("PUT")
	api.Handle("/orders/{id}/track", adminOnly(adminHandler.TrackOrder)).Methods("POST")
	api.Handle("/orders/{id}/notify", adminOnly(adminHandler.NotifyCustomer)).Methods("POST")
	api.Handle("/orders/{id}/send-email", adminOnly(adminHandler.SendOrderEmail)).Methods("POST")
	api.Handle("/orders/{id}/mark-paid", adminOnly(adminHandler.MarkOrderPaid)).Methods("POST")
	api.Handle("/admin/orders", adminOnly(adminHandler.ListOrders)).Methods("GET")
	api.Handle("/admin/orders/export", adminOnly(adminHandler.ExportOrders)).Methods("GET")
	api.Handle("/admin/orders/ws", adminOnly(adminHandler.OrdersFeed)).Methods("GET")
	api.Handle("/admin/orders/{id}/cancel", adminOnly(adminHandler.CancelOrder)).Methods("POST")
	api.Handle("/admin/orders/{id}/refund", adminOnly(adminHandler.RefundOrder)).Methods("POST")
	api.Handle("/admin/orders/{id}/paystack-init", adminOnly(adminHandler.ReinitializePayment)).Methods("POST")
	api.Handle("/admin/orders/{id}/driver", adminOnly(adminHandler.AssignDriver)).Methods("PUT")

	// providers and dashboard
	api.Handle("/admin/test-paystack", adminOnly(adminHandler.TestPaystack)).Methods("GET")
	api.Handle("/admin/test-flutterwave", adminOnly(adminHandler.TestFlutterwave)).Methods("GET")
	api.Handle("/admin/stats", adminOnly(adminHandler.Stats)).Methods("GET")
	api.Handle("/admin/charts", adminOnly(adminHandler.Charts)).Methods("GET")
	api.Handle("/admin/customers/{userID}", adminOnly(adminHandler.Customer)).Methods("GET")

	// catalogue, delivery, drivers
	api.Handle("/admin/products", adminOnly(adminHandler.CreateProduct)).Methods("POST")
	api.Handle("/admin/products/{id}", adminOnly(adminHandler.UpdateProduct)).Methods("PUT")
	api.Handle("/admin/products/{id}", adminOnly(adminHandler.DeleteProduct)).Methods("DELETE")
	api.Handle("/admin/delivery-charges", adminOnly(adminHandler.ListDeliveryCharges)).Methods("GET")
	api.Handle("/admin/delivery-charges", adminOnly(adminHandler.CreateDeliveryCharge)).Methods("POST")
	api.Handle("/admin/delivery-charges/{id}", adminOnly(adminHandler.UpdateDeliveryCharge)).Methods("PUT")
	api.Handle("/admin/delivery-charges/{id}", adminOnly(adminHandler.DeleteDeliveryCharge)).Methods("DELETE")
	api.Handle("/admin/drivers", adminOnly(adminHandler.ListDrivers)).Methods("GET")
	api.Handle("/admin/drivers", adminOnly(adminHandler.CreateDriver)).Methods("POST")
	api.Handle("/admin/drivers/{id}", adminOnly(adminHandler.UpdateDriver)).Methods("PUT")
	api.Handle("/admin/drivers/{id}", adminOnly(adminHandler.DeleteDriver)).Methods("DELETE")

	// newsletter
	api.Handle("/admin/newsletter/subscribers", adminOnly(adminHandler.ListSubscribers)).Methods("GET")
	api.Handle("/admin/newsletter/subscribers", adminOnly(adminHandler.ClearSubscribers)).Methods("DELETE")
	api.Handle("/newsletter/send", adminOnly(adminHandler.SendNewsletter)).Methods("POST")

	stack := append(middlewares.Stack(requestTimeout),
		middlewares.CORS(c.Env.AllowedOrigin),
		guard.Detect,
		middlewares.CustomerAuth(c.Auth),
	)
	return middlewares.Chain(router, stack...)
}

func trustedOrigins(allowed string) []string {
	if allowed == "" || allowed == "*" {
		return nil
	}
	u, err := url.Parse(allowed)
	if err != nil || u.Host == "" {
		return []string{allowed}
	}
	return []string{u.Host}
}
