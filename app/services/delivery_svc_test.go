package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tkbglow/glow-api/app/models"
)

func TestPickDeliveryCharge(t *testing.T) {
	rows := []models.DeliveryCharge{
		{ID: "lagos", State: "Lagos", Charge: dec("3000"), Active: true},
		{ID: "lagos-free", State: "Lagos", Charge: dec("0"), MinSubtotal: dec("100000"), Active: true},
		{ID: "ikeja", State: "Lagos", City: "Ikeja", Charge: dec("1500"), Active: true},
		{ID: "ikeja-mid", State: "Lagos", City: "Ikeja", Charge: dec("1000"), MinSubtotal: dec("50000"), Active: true},
		{ID: "lekki-off", State: "Lagos", City: "Lekki", Charge: dec("500"), Active: false},
	}

	tests := []struct {
		name     string
		city     string
		subtotal string
		wantID   string
		source   string
	}{
		{"city row beats state", "ikeja", "20000", "ikeja", DeliverySourceCity},
		{"highest city tier", "ikeja", "60000", "ikeja-mid", DeliverySourceCity},
		{"city wins over free state tier", "ikeja", "150000", "ikeja-mid", DeliverySourceCity},
		{"state fallback", "yaba", "20000", "lagos", DeliverySourceState},
		{"state free tier", "yaba", "100000", "lagos-free", DeliverySourceState},
		{"inactive city row ignored", "lekki", "20000", "lagos", DeliverySourceState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := pickDeliveryCharge(rows, tt.city, dec(tt.subtotal))
			if q == nil {
				t.Fatalf("expected a quote")
			}
			if q.Row.ID != tt.wantID || q.Source != tt.source {
				t.Fatalf("got %s/%s, want %s/%s", q.Row.ID, q.Source, tt.wantID, tt.source)
			}
		})
	}

	if q := pickDeliveryCharge(rows, "ikeja", dec("-1")); q != nil {
		t.Fatalf("expected no row below every tier, got %+v", q)
	}
}

func TestDeliveryResolve(t *testing.T) {
	e := newTestEnv()
	e.charges.rows = []models.DeliveryCharge{
		{ID: "abuja", State: "FCT", Charge: dec("4500"), Active: true},
	}
	ctx := context.Background()

	q, err := e.delivery.Resolve(ctx, "", "Garki", dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != DeliverySourceMissing || !q.Charge.IsZero() {
		t.Fatalf("missing state should quote zero, got %+v", q)
	}

	q, err = e.delivery.Resolve(ctx, " fct ", "Garki", dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != DeliverySourceState || !q.Charge.Equal(dec("4500")) {
		t.Fatalf("unexpected quote %+v", q)
	}

	q, err = e.delivery.Resolve(ctx, "Kano", "Nassarawa", dec("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != DeliverySourceDefault || !q.Charge.Equal(dec("3500")) {
		t.Fatalf("expected default charge, got %+v", q)
	}
}

func TestDeliveryResolveCachesUntilChange(t *testing.T) {
	e := newTestEnv()
	e.charges.rows = []models.DeliveryCharge{
		{ID: "oyo", State: "Oyo", Charge: dec("2500"), Active: true},
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.delivery.Resolve(ctx, "Oyo", "Ibadan", dec("5000")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if e.charges.calls != 1 {
		t.Fatalf("expected one repository read, got %d", e.charges.calls)
	}

	if _, err := e.delivery.Create(ctx, DeliveryChargeInput{State: "Oyo", City: "Ibadan", Charge: dec("1200")}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	q, err := e.delivery.Resolve(ctx, "Oyo", "Ibadan", dec("5000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != DeliverySourceCity || !q.Charge.Equal(dec("1200")) {
		t.Fatalf("cache was not invalidated, got %+v", q)
	}
}

func TestDeliveryCreateValidation(t *testing.T) {
	e := newTestEnv()
	_, err := e.delivery.Create(context.Background(), DeliveryChargeInput{State: "Lagos", Charge: dec("-5")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := e.delivery.Delete(context.Background(), "missing"); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("expected ErrDeliveryNotFound, got %v", err)
	}
}
