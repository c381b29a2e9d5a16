package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/cache"
	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/utils/calc"
	"gorm.io/gorm"
)

var totalTolerance = decimal.NewFromInt(1)

type CheckoutLine struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
	Image    string          `json:"image"`
}

type CheckoutDelivery struct {
	Address models.ShippingAddress `json:"address" validate:"required"`
}

// CheckoutRequest mirrors the storefront payload. Prices, delivery and
// discount sent by the client are informational only.
type CheckoutRequest struct {
	Cart            []CheckoutLine   `json:"cart" validate:"required,min=1,dive"`
	Delivery        CheckoutDelivery `json:"delivery"`
	DeliveryCharge  decimal.Decimal  `json:"delivery_charge"`
	ClientTotal     *decimal.Decimal `json:"client_total"`
	PaymentProvider string           `json:"payment_provider" validate:"required,oneof=paystack flutterwave"`
	UserID          string           `json:"userId"`
	Email           string           `json:"email" validate:"required,email"`
	PromoCode       string           `json:"promo_code"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
}

type CheckoutService struct {
	tx        repositories.Transactor
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	delivery  *DeliveryService
	promos    *PromoService
	payments  *PaymentService
	cache     cache.Cache
	publisher events.Publisher
	hub       Broadcaster
}

func NewCheckoutService(
	tx repositories.Transactor,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	delivery *DeliveryService,
	promos *PromoService,
	payments *PaymentService,
	c cache.Cache,
	publisher events.Publisher,
	hub Broadcaster,
) *CheckoutService {
	return &CheckoutService{
		tx:        tx,
		orders:    orders,
		products:  products,
		delivery:  delivery,
		promos:    promos,
		payments:  payments,
		cache:     c,
		publisher: publisher,
		hub:       hub,
	}
}

// mergeLines folds repeated product ids into one line each, keeping first-seen order.
func mergeLines(cart []CheckoutLine) ([]string, map[string]int, error) {
	var ids []string
	qty := make(map[string]int)
	for _, l := range cart {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("%w: cart item without id", ErrInvalidInput)
		}
		if l.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
		if _, seen := qty[id]; !seen {
			ids = append(ids, id)
		}
		qty[id] += l.Quantity
	}
	return ids, qty, nil
}

// CreateOrder prices the cart from the database, persists a pending order and
// opens a payment session with the chosen provider. When the provider call
// fails the order is kept and the partial result is returned with the error.
func (s *CheckoutService) CreateOrder(ctx context.Context, req CheckoutRequest, idempotencyKey string) (*CheckoutResult, error) {
	if idempotencyKey != "" {
		if res, ok := s.replay(ctx, idempotencyKey); ok {
			return res, nil
		}
	}

	if len(req.Cart) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := s.payments.gateways.Get(req.PaymentProvider); err != nil {
		return nil, err
	}

	ids, qty, err := mergeLines(req.Cart)
	if err != nil {
		return nil, err
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(ids))
	lines := make([]calc.Line, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if p.Stock < qty[id] {
			return nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Title, p.Stock)
		}
		lines = append(lines, calc.Line{Price: p.Price, Quantity: qty[id]})
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.FirstImage(),
			Quantity:  qty[id],
			Price:     p.Price,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(qty[id]))),
		})
	}
	subtotal := calc.Subtotal(lines)

	addr := req.Delivery.Address
	dq, err := s.delivery.Resolve(ctx, addr.State, addr.City, subtotal)
	if err != nil {
		return nil, err
	}

	var promo *models.Promo
	if code := models.NormalizePromoCode(req.PromoCode); code != "" {
		promo, err = s.promos.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
	}

	quote := calc.CalculateQuote(subtotal, dq.Charge, promo)
	if req.ClientTotal != nil && !calc.WithinTolerance(*req.ClientTotal, quote.Total, totalTolerance) {
		log.Printf("WARNING: CheckoutService.CreateOrder: client total %s, server total %s", req.ClientTotal.StringFixed(2), quote.Total.StringFixed(2))
		return nil, fmt.Errorf("%w (expected %s)", ErrTotalMismatch, quote.Total.StringFixed(2))
	}

	if addr.Email == "" {
		addr.Email = req.Email
	}
	order := &models.Order{
		UserID:          req.UserID,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		PaymentProvider: req.PaymentProvider,
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.Discount,
		DeliveryCharge:  quote.Delivery,
		Total:           quote.Total,
		ShippingAddress: addr,
		TrackingInfo:    []models.TrackingEvent{},
		OrderItems:      items,
	}
	if promo != nil {
		order.PromoCode = promo.Code
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	log.Printf("✅ CheckoutService.CreateOrder: order %s created, total %s via %s", order.ID, order.Total.StringFixed(2), order.PaymentProvider)

	if idempotencyKey != "" {
		key := fmt.Sprintf(cache.KeyIdemOrderCreate, idempotencyKey)
		if _, err := s.cache.SetNX(ctx, key, order.ID, cache.TTLIdempotency); err != nil {
			log.Printf("CheckoutService.CreateOrder: idempotency key %s: %v", key, err)
		}
	}

	s.announce(ctx, order)

	res, err := s.payments.startPayment(ctx, order, false)
	if err != nil {
		return newCheckoutResult(order), err
	}
	return res, nil
}

func (s *CheckoutService) replay(ctx context.Context, idempotencyKey string) (*CheckoutResult, bool) {
	key := fmt.Sprintf(cache.KeyIdemOrderCreate, idempotencyKey)
	orderID, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, false
	}
	log.Printf("INFO: CheckoutService: replaying order %s for idempotency key %s", order.ID, idempotencyKey)
	return newCheckoutResult(order), true
}

func (s *CheckoutService) announce(ctx context.Context, order *models.Order) {
	env, err := events.NewEnvelope(events.EventOrderCreated, order.ID, events.OrderPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         order.Email,
		Status:        string(order.Status),
		PaymentStatus: order.PaymentStatus,
		Provider:      order.PaymentProvider,
		Total:         order.Total.StringFixed(2),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		log.Printf("CheckoutService.announce: order %s: %v", order.ID, err)
	}
	s.hub.Broadcast(BroadcastOrderCreated, order)
}
