package services

import (
	"context"
	"fmt"
	"log"

	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/repositories"
)

// NotificationService turns order events into customer e-mails. It runs in
// the worker process, or in-process when no broker is configured.
type NotificationService struct {
	orders repositories.OrderRepository
	mailer EmailSender
}

func NewNotificationService(orders repositories.OrderRepository, mailer EmailSender) *NotificationService {
	return &NotificationService{orders: orders, mailer: mailer}
}

func (s *NotificationService) Handle(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.EventOrderPaid, events.EventOrderTracked:
	default:
		return nil
	}

	p, err := events.UnwrapPayload[events.OrderPayload](env.Payload)
	if err != nil {
		return err
	}
	order, err := s.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", p.OrderID, err)
	}
	if order == nil {
		log.Printf("NotificationService.Handle: order %s no longer exists, skipping %s", p.OrderID, env.EventType)
		return nil
	}

	var subject, body string
	if env.EventType == events.EventOrderPaid {
		subject, body = BuildOrderConfirmationEmail(order)
	} else {
		subject, body = BuildTrackingUpdateEmail(order, p.Status, p.Message)
	}

	if err := s.mailer.SendHTMLEmail(order.Email, subject, body); err != nil {
		return err
	}
	log.Printf("NotificationService.Handle: %s mail sent for order %s", env.EventType, order.ID)
	return nil
}
