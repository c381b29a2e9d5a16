package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tkbglow/glow-api/app/models"
)

func intPtr(i int) *int { return &i }

func TestPromoValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	promos := newFakePromos(
		models.Promo{Code: "GLOW10", DiscountType: models.DiscountPercent, Value: dec("10"), Active: true},
		models.Promo{Code: "OFF", DiscountType: models.DiscountFixed, Value: dec("500"), Active: false},
		models.Promo{Code: "OLD", DiscountType: models.DiscountFixed, Value: dec("500"), Active: true, ExpiresAt: &past},
		models.Promo{Code: "BIG", DiscountType: models.DiscountFixed, Value: dec("500"), Active: true, MinSubtotal: dec("20000")},
		models.Promo{Code: "USED", DiscountType: models.DiscountFixed, Value: dec("500"), Active: true, MaxUses: intPtr(2), UsedCount: 2},
	)
	svc := NewPromoService(promos)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	p, err := svc.Validate(ctx, " glow10 ", dec("5000"))
	if err != nil {
		t.Fatalf("expected valid promo, got %v", err)
	}
	if p.Code != "GLOW10" {
		t.Fatalf("unexpected promo %s", p.Code)
	}

	if _, err := svc.Validate(ctx, "NOPE", dec("5000")); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}
	for _, code := range []string{"", "OFF", "OLD", "BIG", "USED"} {
		if _, err := svc.Validate(ctx, code, dec("5000")); !errors.Is(err, ErrPromoInvalid) {
			t.Fatalf("%q: expected ErrPromoInvalid, got %v", code, err)
		}
	}
}

func TestPromoRedeemOncePerOrder(t *testing.T) {
	promos := newFakePromos(models.Promo{Code: "ONCE", DiscountType: models.DiscountFixed, Value: dec("100"), Active: true, MaxUses: intPtr(1)})
	svc := NewPromoService(promos)
	ctx := context.Background()

	if err := svc.Redeem(ctx, nil, "once", "order-1", "user-1", dec("100")); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if err := svc.Redeem(ctx, nil, "ONCE", "order-1", "user-1", dec("100")); err != nil {
		t.Fatalf("repeat redeem for same order should be a no-op, got %v", err)
	}
	if got := promos.items["ONCE"].UsedCount; got != 1 {
		t.Fatalf("expected used_count 1, got %d", got)
	}

	if err := svc.Redeem(ctx, nil, "ONCE", "order-2", "user-2", dec("100")); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected exhausted promo to be rejected, got %v", err)
	}
}

func TestPromoCreateAndUpdate(t *testing.T) {
	svc := NewPromoService(newFakePromos())
	ctx := context.Background()

	if _, err := svc.Create(ctx, PromoInput{Code: "pct", DiscountType: models.DiscountPercent, Value: dec("150")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected percent over 100 to be rejected, got %v", err)
	}

	p, err := svc.Create(ctx, PromoInput{Code: " welcome ", DiscountType: models.DiscountFixed, Value: dec("1000")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Code != "WELCOME" || !p.Active {
		t.Fatalf("unexpected promo %+v", p)
	}
	if _, err := svc.Create(ctx, PromoInput{Code: "WELCOME", DiscountType: models.DiscountFixed, Value: dec("1")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate code to be rejected, got %v", err)
	}

	off := false
	p, err = svc.Update(ctx, "welcome", PromoUpdate{Active: &off})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if p.Active {
		t.Fatalf("expected promo to be deactivated")
	}
	if _, err := svc.Update(ctx, "MISSING", PromoUpdate{Active: &off}); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "WELCOME", PromoUpdate{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected empty update to be rejected, got %v", err)
	}
}

func TestPromoUpdateChecksMergedTerms(t *testing.T) {
	svc := NewPromoService(newFakePromos(
		models.Promo{Code: "GLOW10", DiscountType: models.DiscountPercent, Value: dec("10"), Active: true},
		models.Promo{Code: "FLAT5K", DiscountType: models.DiscountFixed, Value: dec("5000"), Active: true},
	))
	ctx := context.Background()
	percent := models.DiscountPercent
	big := dec("500")
	negative := dec("-1")
	ok := dec("25")

	tests := []struct {
		name    string
		code    string
		in      PromoUpdate
		wantErr error
	}{
		{"percent value over 100", "GLOW10", PromoUpdate{Value: &big}, ErrInvalidInput},
		{"fixed switched to percent keeps 5000", "FLAT5K", PromoUpdate{DiscountType: &percent}, ErrInvalidInput},
		{"negative min subtotal", "GLOW10", PromoUpdate{MinSubtotal: &negative}, ErrInvalidInput},
		{"valid percent value", "glow10", PromoUpdate{Value: &ok}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.code, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	p, err := svc.repo.GetByCode(ctx, "FLAT5K")
	if err != nil || p.DiscountType != models.DiscountFixed || !p.Value.Equal(dec("5000")) {
		t.Fatalf("rejected update must leave the promo unchanged, got %+v", p)
	}
	p, err = svc.repo.GetByCode(ctx, "GLOW10")
	if err != nil || !p.Value.Equal(dec("25")) || !p.MinSubtotal.IsZero() {
		t.Fatalf("expected GLOW10 to be 25%% off with no minimum, got %+v", p)
	}
}
