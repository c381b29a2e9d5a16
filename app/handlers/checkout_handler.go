package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/unrolled/render"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	render    *render.Render
	validator *validator.Validate
	checkout  OrderCreator
	delivery  DeliveryResolver
	promos    PromoValidator
}

func NewCheckoutHandler(
	render *render.Render,
	validator *validator.Validate,
	checkout OrderCreator,
	delivery DeliveryResolver,
	promos PromoValidator,
) *CheckoutHandler {
	return &CheckoutHandler{
		render:    render,
		validator: validator,
		checkout:  checkout,
		delivery:  delivery,
		promos:    promos,
	}
}

func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req services.CheckoutRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.WriteError(h.render, w, "CheckoutHandler.CreateOrder", err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.PaymentProvider = strings.ToLower(strings.TrimSpace(req.PaymentProvider))

	if len(req.Cart) == 0 {
		helpers.WriteError(h.render, w, "CheckoutHandler.CreateOrder", services.ErrEmptyCart)
		return
	}

	// only a bearer token attributes the order to a user
	req.UserID = ""
	if userID, email, ok := helpers.CustomerFromContext(r.Context()); ok {
		req.UserID = userID
		if req.Email == "" {
			req.Email = email
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		log.Printf("CheckoutHandler.CreateOrder: validation failed: %v", err)
		helpers.WriteValidation(h.render, w, err)
		return
	}

	res, err := h.checkout.CreateOrder(r.Context(), req, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		if res != nil && helpers.StatusFor(err) == http.StatusBadGateway {
			log.Printf("CheckoutHandler.CreateOrder: order %s saved but payment init failed: %v", res.OrderID, err)
			h.render.JSON(w, http.StatusBadGateway, map[string]any{
				"error":   err.Error(),
				"orderId": res.OrderID,
				"total":   res.Total,
			})
			return
		}
		helpers.WriteError(h.render, w, "CheckoutHandler.CreateOrder", err)
		return
	}

	log.Printf("CheckoutHandler.CreateOrder: ✅ order %s created (%s)", res.OrderID, req.PaymentProvider)
	h.render.JSON(w, http.StatusCreated, res)
}

func (h *CheckoutHandler) DeliveryCharge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subtotal, err := parseAmount(q.Get("subtotal"))
	if err != nil {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "subtotal must be a number")
		return
	}

	quote, err := h.delivery.Resolve(r.Context(), q.Get("state"), q.Get("city"), subtotal)
	if err != nil {
		helpers.WriteError(h.render, w, "CheckoutHandler.DeliveryCharge", err)
		return
	}
	h.render.JSON(w, http.StatusOK, quote)
}

func (h *CheckoutHandler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "code is required")
		return
	}
	subtotal, err := parseAmount(q.Get("subtotal"))
	if err != nil {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "subtotal must be a number")
		return
	}

	promo, err := h.promos.Validate(r.Context(), code, subtotal)
	if err != nil {
		helpers.WriteError(h.render, w, "CheckoutHandler.ValidatePromo", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"promo": promo})
}

// parseAmount treats an empty value as zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount", services.ErrInvalidInput)
	}
	return d, nil
}
