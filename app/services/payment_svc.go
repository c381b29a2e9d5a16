package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tkbglow/glow-api/app/cache"
	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/models/other"
	"github.com/tkbglow/glow-api/app/repositories"
	"gorm.io/gorm"
)

const (
	paystackRefPrefix    = "TKB-"
	flutterwaveRefPrefix = "FLW-"
)

type PaystackSession struct {
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
	AuthorizationURL string `json:"authorization_url"`
}

type FlutterwaveSession struct {
	TxRef string `json:"tx_ref"`
	Link  string `json:"link"`
}

type CheckoutResult struct {
	OrderID     string              `json:"orderId"`
	Total       string              `json:"total"`
	Paystack    *PaystackSession    `json:"paystack,omitempty"`
	Flutterwave *FlutterwaveSession `json:"flutterwave,omitempty"`
}

func newCheckoutResult(order *models.Order) *CheckoutResult {
	res := &CheckoutResult{OrderID: order.ID, Total: order.Total.StringFixed(2)}
	if order.PaymentURL == "" {
		return res
	}
	switch order.PaymentProvider {
	case models.ProviderPaystack:
		res.Paystack = &PaystackSession{Reference: order.ProviderReference, AuthorizationURL: order.PaymentURL}
	case models.ProviderFlutterwave:
		res.Flutterwave = &FlutterwaveSession{TxRef: order.ProviderReference, Link: order.PaymentURL}
	}
	return res
}

type PaymentService struct {
	tx              repositories.Transactor
	orders          repositories.OrderRepository
	products        repositories.ProductRepository
	promos          *PromoService
	orderSvc        *OrderService
	gateways        Gateways
	cache           cache.Cache
	paystackSecret  string
	flutterwaveHash string
	now             func() time.Time
}

type PaymentServiceConfig struct {
	PaystackSecret  string
	FlutterwaveHash string
}

func NewPaymentService(
	tx repositories.Transactor,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	promos *PromoService,
	orderSvc *OrderService,
	gateways Gateways,
	c cache.Cache,
	cfg PaymentServiceConfig,
) *PaymentService {
	return &PaymentService{
		tx:              tx,
		orders:          orders,
		products:        products,
		promos:          promos,
		orderSvc:        orderSvc,
		gateways:        gateways,
		cache:           c,
		paystackSecret:  cfg.PaystackSecret,
		flutterwaveHash: cfg.FlutterwaveHash,
		now:             time.Now,
	}
}

func (s *PaymentService) reference(provider, orderID string, retry bool) string {
	prefix := paystackRefPrefix
	if provider == models.ProviderFlutterwave {
		prefix = flutterwaveRefPrefix
	}
	ref := prefix + orderID
	if retry {
		ref += "-" + strconv.FormatInt(s.now().Unix(), 10)
	}
	return ref
}

// startPayment opens a provider session for order and stores its reference
// and URL on the order.
func (s *PaymentService) startPayment(ctx context.Context, order *models.Order, retry bool) (*CheckoutResult, error) {
	gw, err := s.gateways.Get(order.PaymentProvider)
	if err != nil {
		return nil, err
	}

	session, err := gw.Initialize(ctx, order, s.reference(order.PaymentProvider, order.ID, retry))
	if err != nil {
		log.Printf("❌ PaymentService.startPayment: %s init for order %s: %v", gw.Name(), order.ID, err)
		if !errors.Is(err, ErrPaymentProvider) {
			err = fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		return nil, err
	}

	order.ProviderReference = session.Reference
	order.PaymentURL = session.AuthorizationURL
	err = s.orders.UpdateFields(ctx, nil, order.ID, map[string]interface{}{
		"provider_reference": session.Reference,
		"payment_url":        session.AuthorizationURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	res := newCheckoutResult(order)
	if res.Paystack != nil {
		res.Paystack.AccessCode = session.AccessCode
	}
	return res, nil
}

// Reinitialize opens a fresh provider session for an unpaid pending order.
func (s *PaymentService) Reinitialize(ctx context.Context, orderID string) (*CheckoutResult, error) {
	order, err := s.orderSvc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return nil, ErrOrderAlreadyPaid
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be re-initialized", ErrInvalidTransition)
	}
	return s.startPayment(ctx, order, true)
}

// paymentBelongsTo reports whether a verified payment was opened for order:
// the echoed order id must match when present, and the reference must be the
// order's stored reference or one this service generates for it.
func paymentBelongsTo(order *models.Order, vp *VerifiedPayment) bool {
	if vp.OrderID != "" && vp.OrderID != order.ID {
		return false
	}
	ref := vp.Reference
	if ref == "" {
		return vp.OrderID == order.ID
	}
	if order.ProviderReference != "" && ref == order.ProviderReference {
		return true
	}
	for _, prefix := range []string{paystackRefPrefix, flutterwaveRefPrefix} {
		base := prefix + order.ID
		if ref == base || strings.HasPrefix(ref, base+"-") {
			return true
		}
	}
	return false
}

func checkPayment(order *models.Order, vp *VerifiedPayment) error {
	switch {
	case !paymentBelongsTo(order, vp):
		return fmt.Errorf("%w: payment %s does not belong to order %s", ErrPaymentNotVerified, vp.Reference, order.ID)
	case !vp.Successful:
		return fmt.Errorf("%w: provider status %q", ErrPaymentNotVerified, vp.Status)
	case vp.Currency != currencyNGN:
		return fmt.Errorf("%w: unexpected currency %q", ErrPaymentNotVerified, vp.Currency)
	case vp.Amount.LessThan(order.Total):
		return fmt.Errorf("%w: paid %s, order total %s", ErrPaymentNotVerified, vp.Amount.StringFixed(2), order.Total.StringFixed(2))
	}
	return nil
}

// Verify asks the provider about a payment and marks the order paid when the
// provider confirms the full amount.
func (s *PaymentService) Verify(ctx context.Context, orderID, provider, reference string) (*models.Order, error) {
	order, err := s.orderSvc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return order, nil
	}

	if provider == "" {
		provider = order.PaymentProvider
	}
	if reference == "" {
		reference = order.ProviderReference
	}
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, err
	}
	vp, err := gw.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := checkPayment(order, vp); err != nil {
		log.Printf("WARNING: PaymentService.Verify: order %s: %v", order.ID, err)
		return nil, err
	}
	return s.MarkPaid(ctx, order.ID, provider, vp.Reference, vp.TransactionID)
}

// MarkPaid records a confirmed payment. Calling it again for a paid order
// changes nothing.
func (s *PaymentService) MarkPaid(ctx context.Context, orderID, provider, reference, transactionID string) (*models.Order, error) {
	var (
		order   *models.Order
		changed bool
	)

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.IsPaid() {
			log.Printf("INFO: PaymentService.MarkPaid: order %s already paid, skipping", order.ID)
			return nil
		}
		if order.Status.Terminal() {
			return fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
		}
		changed = true

		var reserved []string
		for i := range order.OrderItems {
			it := &order.OrderItems[i]
			ok, err := s.products.DecrementStock(ctx, tx, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("failed to reduce stock for %s: %w", it.ProductID, err)
			}
			if ok {
				it.StockReserved = true
				reserved = append(reserved, it.ID)
			} else {
				log.Printf("WARNING: PaymentService.MarkPaid: order %s oversold product %s by up to %d", order.ID, it.ProductID, it.Quantity)
				order.TrackingInfo = append(order.TrackingInfo, models.TrackingEvent{
					Status:  "stock_shortfall",
					Message: fmt.Sprintf("%s: not enough stock for %d unit(s)", it.Title, it.Quantity),
					At:      s.now().UTC(),
				})
			}
		}
		if err := s.orders.SetStockReserved(ctx, tx, reserved, true); err != nil {
			return fmt.Errorf("failed to record reserved stock: %w", err)
		}

		if order.PromoCode != "" {
			err := s.promos.Redeem(ctx, tx, order.PromoCode, order.ID, order.UserID, order.DiscountAmount)
			if errors.Is(err, ErrPromoInvalid) {
				log.Printf("WARNING: PaymentService.MarkPaid: order %s: promo %s: %v", order.ID, order.PromoCode, err)
			} else if err != nil {
				return err
			}
		}

		now := s.now()
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaidAt = &now
		if provider != "" {
			order.PaymentProvider = provider
		}
		if reference != "" {
			order.ProviderReference = reference
		}
		if transactionID != "" {
			order.ProviderTransactionID = transactionID
		}

		if order.Status == models.OrderStatusPending {
			order.Status = models.OrderStatusProcessing
		}
		return s.orders.Save(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("✅ PaymentService.MarkPaid: order %s paid via %s (%s)", order.ID, order.PaymentProvider, order.ProviderReference)
		s.orderSvc.emit(ctx, events.EventOrderPaid, order, events.OrderPayload{})
	}
	return order, nil
}

func (s *PaymentService) markFailed(ctx context.Context, order *models.Order, reason string) {
	if order.IsPaid() {
		return
	}
	err := s.orders.UpdateFields(ctx, nil, order.ID, map[string]interface{}{"payment_status": models.PaymentStatusFailed})
	if err != nil {
		log.Printf("PaymentService.markFailed: order %s: %v", order.ID, err)
		return
	}
	log.Printf("INFO: PaymentService: order %s payment failed: %s", order.ID, reason)
}

// Refund returns the money through the provider, then moves the order to
// refunded and restores stock.
func (s *PaymentService) Refund(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderSvc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid() {
		return nil, ErrOrderNotPaid
	}
	if !models.CanTransition(order.Status, models.OrderStatusRefunded) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderStatusRefunded)
	}

	if order.PaymentProvider != models.ProviderManual {
		gw, err := s.gateways.Get(order.PaymentProvider)
		if err != nil {
			return nil, err
		}
		if err := gw.Refund(ctx, order); err != nil {
			return nil, err
		}
	}
	return s.orderSvc.UpdateStatus(ctx, order.ID, models.OrderStatusRefunded)
}

func (s *PaymentService) ProviderHealth(ctx context.Context, provider string) error {
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return err
	}
	return gw.Ping(ctx)
}

// claimEvent reports whether this delivery of a webhook is the first one.
func (s *PaymentService) claimEvent(ctx context.Context, provider, id string) (string, bool) {
	key := fmt.Sprintf(cache.KeyDedupWebhook, provider, id)
	ok, err := s.cache.SetNX(ctx, key, "1", cache.TTLDedup)
	if err != nil {
		log.Printf("PaymentService.claimEvent: %s: %v", key, err)
		return key, true
	}
	return key, ok
}

func (s *PaymentService) release(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("PaymentService.release: %s: %v", key, err)
	}
}

func (s *PaymentService) HandlePaystackWebhook(ctx context.Context, body []byte, signature string) error {
	if !VerifyPaystackSignature(s.paystackSecret, body, signature) {
		return ErrInvalidSignature
	}

	var evt other.PaystackWebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: malformed paystack event", ErrInvalidInput)
	}
	if evt.Event != "charge.success" {
		log.Printf("INFO: PaymentService: ignoring paystack event %s", evt.Event)
		return nil
	}

	key, first := s.claimEvent(ctx, models.ProviderPaystack, evt.Event+":"+evt.Data.Reference)
	if !first {
		log.Printf("INFO: PaymentService: duplicate paystack event for %s", evt.Data.Reference)
		return nil
	}

	orderID := evt.Data.Metadata.OrderID
	if orderID == "" {
		order, err := s.orders.FindByReference(ctx, evt.Data.Reference)
		if err != nil {
			s.release(ctx, key)
			return err
		}
		if order == nil {
			log.Printf("WARNING: PaymentService: paystack reference %s matches no order", evt.Data.Reference)
			return nil
		}
		orderID = order.ID
	}

	if _, err := s.Verify(ctx, orderID, models.ProviderPaystack, evt.Data.Reference); err != nil {
		if !errors.Is(err, ErrPaymentNotVerified) {
			s.release(ctx, key)
		}
		return err
	}
	return nil
}

func (s *PaymentService) HandleFlutterwaveWebhook(ctx context.Context, body []byte, hash string) error {
	if !VerifyFlutterwaveHash(s.flutterwaveHash, hash) {
		return ErrInvalidSignature
	}

	var evt other.FlutterwaveWebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: malformed flutterwave event", ErrInvalidInput)
	}
	if evt.Event != "charge.completed" {
		log.Printf("INFO: PaymentService: ignoring flutterwave event %s", evt.Event)
		return nil
	}

	key, first := s.claimEvent(ctx, models.ProviderFlutterwave, strconv.FormatInt(evt.Data.ID, 10))
	if !first {
		log.Printf("INFO: PaymentService: duplicate flutterwave event %d", evt.Data.ID)
		return nil
	}

	order, err := s.orders.FindByReference(ctx, evt.Data.TxRef)
	if err != nil {
		s.release(ctx, key)
		return err
	}
	if order == nil {
		log.Printf("WARNING: PaymentService: flutterwave tx_ref %s matches no order", evt.Data.TxRef)
		return nil
	}

	if evt.Data.Status != "successful" {
		s.markFailed(ctx, order, "flutterwave status "+evt.Data.Status)
		return nil
	}

	if _, err := s.Verify(ctx, order.ID, models.ProviderFlutterwave, strconv.FormatInt(evt.Data.ID, 10)); err != nil {
		if !errors.Is(err, ErrPaymentNotVerified) {
			s.release(ctx, key)
		}
		return err
	}
	return nil
}
