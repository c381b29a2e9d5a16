package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/utils/format"
	"gorm.io/gorm"
)

const (
	TrackOutForDelivery = "out_for_delivery"
	TrackDelivered      = "delivered"

	NotifyDeliveryStarted = "delivery_started"
	NotifyRefund          = "refund"
	NotifyCustom          = "custom"

	EmailOrderConfirmation = "order_confirmation"
	EmailDeliveryDetails   = "delivery_details"
)

type OrderService struct {
	tx        repositories.Transactor
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	drivers   repositories.DriverRepository
	mailer    EmailSender
	publisher events.Publisher
	hub       Broadcaster
	now       func() time.Time
}

func NewOrderService(
	tx repositories.Transactor,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	drivers repositories.DriverRepository,
	mailer EmailSender,
	publisher events.Publisher,
	hub Broadcaster,
) *OrderService {
	return &OrderService{
		tx:        tx,
		orders:    orders,
		products:  products,
		drivers:   drivers,
		mailer:    mailer,
		publisher: publisher,
		hub:       hub,
		now:       time.Now,
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error) {
	if f.Status != "" && !models.OrderStatus(f.Status).Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return s.orders.List(ctx, f)
}

// applyTransition moves a locked order to next inside tx. Leaving a paid
// order through cancellation or refund puts back the units that payment
// actually took from stock.
func (s *OrderService) applyTransition(ctx context.Context, tx *gorm.DB, order *models.Order, next models.OrderStatus) error {
	if !models.CanTransition(order.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	restock := order.IsPaid() && (next == models.OrderStatusCancelled || next == models.OrderStatusRefunded)
	if restock {
		var released []string
		for i := range order.OrderItems {
			it := &order.OrderItems[i]
			if !it.StockReserved {
				continue
			}
			if err := s.products.IncrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock for %s: %w", it.ProductID, err)
			}
			it.StockReserved = false
			released = append(released, it.ID)
		}
		if err := s.orders.SetStockReserved(ctx, tx, released, false); err != nil {
			return fmt.Errorf("failed to release reserved stock: %w", err)
		}
	}

	order.Status = next
	if next == models.OrderStatusRefunded {
		order.PaymentStatus = models.PaymentStatusRefunded
	}
	return s.orders.Save(ctx, tx, order)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	var (
		order    *models.Order
		previous models.OrderStatus
		changed  bool
	)
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		previous = order.Status
		if order.Status == next {
			return nil
		}
		changed = true
		return s.applyTransition(ctx, tx, order, next)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("OrderService.UpdateStatus: order %s %s -> %s", order.ID, previous, next)
		s.emit(ctx, events.EventOrderStatusChanged, order, events.OrderPayload{PreviousState: string(previous)})
	}
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, id string) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, models.OrderStatusCancelled)
}

// Track appends a tracking event. out_for_delivery ships a processing order
// and delivered completes a shipped one; other labels only add history.
func (s *OrderService) Track(ctx context.Context, id, status, message string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}

	var order *models.Order
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		order.TrackingInfo = append(order.TrackingInfo, models.TrackingEvent{
			Status:  status,
			Message: strings.TrimSpace(message),
			At:      s.now().UTC(),
		})

		switch {
		case status == TrackOutForDelivery && order.Status == models.OrderStatusProcessing:
			return s.applyTransition(ctx, tx, order, models.OrderStatusShipped)
		case status == TrackDelivered && order.Status == models.OrderStatusShipped:
			return s.applyTransition(ctx, tx, order, models.OrderStatusDelivered)
		}
		return s.orders.Save(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.EventOrderTracked, order, events.OrderPayload{Message: message, Status: status})
	return order, nil
}

func (s *OrderService) AssignDriver(ctx context.Context, id, driverID string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"driver_id": nil}
	if driverID != "" {
		driver, err := s.drivers.GetByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if driver == nil {
			return nil, ErrDriverNotFound
		}
		fields["driver_id"] = driver.ID
	}

	if err := s.orders.UpdateFields(ctx, nil, order.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to assign driver: %w", err)
	}
	return s.Get(ctx, id)
}

// Notify builds the WhatsApp click-to-chat link for the customer's phone.
func (s *OrderService) Notify(ctx context.Context, id, kind, message string) (string, string, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}

	name := firstName(order.ShippingAddress.FullName)
	switch kind {
	case NotifyDeliveryStarted:
		message = fmt.Sprintf("Hi %s, your order #%s is on the way! Your delivery driver will arrive soon.", name, order.ShortID())
		if order.Driver != nil {
			message += fmt.Sprintf(" Rider: %s (%s).", order.Driver.FullName, order.Driver.Phone)
		}
	case NotifyRefund:
		message = fmt.Sprintf("Hi %s, your refund of %s for order #%s has been processed. The amount will appear in your account within 3-5 business days.",
			name, format.FormatNaira(order.Total), order.ShortID())
	case NotifyCustom:
		message = strings.TrimSpace(message)
		if message == "" {
			return "", "", fmt.Errorf("%w: message is required", ErrInvalidInput)
		}
	default:
		return "", "", fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, kind)
	}

	link, err := WhatsAppLink(order.ShippingAddress.Phone, message)
	if err != nil {
		return "", "", err
	}
	return link, message, nil
}

func (s *OrderService) SendEmail(ctx context.Context, id, kind string, rider *RiderInfo) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var subject, body string
	switch kind {
	case EmailOrderConfirmation:
		subject, body = BuildOrderConfirmationEmail(order)
	case EmailDeliveryDetails:
		if rider.empty() && order.Driver != nil {
			rider = &RiderInfo{Name: order.Driver.FullName, Phone: order.Driver.Phone, Vehicle: order.Driver.Vehicle}
		}
		subject, body = BuildDeliveryDetailsEmail(order, rider)
	default:
		return fmt.Errorf("%w: unknown email type %q", ErrInvalidInput, kind)
	}

	if err := s.mailer.SendHTMLEmail(order.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	log.Printf("OrderService.SendEmail: %s sent for order %s", kind, order.ID)
	return nil
}

func (s *OrderService) emit(ctx context.Context, eventType string, order *models.Order, extra events.OrderPayload) {
	payload := extra
	payload.OrderID = order.ID
	payload.UserID = order.UserID
	payload.Email = order.Email
	if payload.Status == "" {
		payload.Status = string(order.Status)
	}
	payload.PaymentStatus = order.PaymentStatus
	payload.Provider = order.PaymentProvider
	payload.Total = order.Total.StringFixed(2)

	env, err := events.NewEnvelope(eventType, order.ID, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		log.Printf("OrderService.emit: %s for %s: %v", eventType, order.ID, err)
	}
	s.hub.Broadcast(BroadcastOrderUpdated, order)
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// NormalizeNigerianPhone returns the international digits for phone, turning
// a local 0XXXXXXXXXX number into 234XXXXXXXXXX.
func NormalizeNigerianPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		return "234" + digits[1:]
	}
	return digits
}

func WhatsAppLink(phone, message string) (string, error) {
	digits := NormalizeNigerianPhone(phone)
	if digits == "" {
		return "", fmt.Errorf("%w: order has no phone number", ErrInvalidInput)
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20"), nil
}
