package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models"
)

func serum() models.Product {
	return models.Product{ID: "p-serum", Title: "Glow Serum", Slug: "glow-serum", Price: dec("5000"), Stock: 10, Images: []string{"serum.jpg"}}
}

func soap() models.Product {
	return models.Product{ID: "p-soap", Title: "Black Soap", Slug: "black-soap", Price: dec("1500"), Stock: 1}
}

func checkoutRequest(lines ...CheckoutLine) CheckoutRequest {
	return CheckoutRequest{
		Cart: lines,
		Delivery: CheckoutDelivery{Address: models.ShippingAddress{
			FullName: "Ada Obi",
			Phone:    "08031234567",
			Address:  "12 Allen Avenue",
			City:     "Ikeja",
			State:    "Lagos",
		}},
		PaymentProvider: models.ProviderPaystack,
		UserID:          "user-1",
		Email:           "Ada@Example.com",
	}
}

func lagosCharges(e *testEnv) {
	e.charges.rows = []models.DeliveryCharge{{ID: "lagos", State: "Lagos", Charge: dec("2000"), Active: true}}
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	e := newTestEnv(serum(), soap())
	lagosCharges(e)

	req := checkoutRequest(
		CheckoutLine{ID: "p-serum", Price: dec("1"), Quantity: 1},
		CheckoutLine{ID: "p-serum", Price: dec("1"), Quantity: 1},
	)
	res, err := e.checkout.CreateOrder(context.Background(), req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != "12000.00" {
		t.Fatalf("expected total 12000.00, got %s", res.Total)
	}
	if res.Paystack == nil || res.Paystack.Reference != "TKB-"+res.OrderID {
		t.Fatalf("expected paystack session, got %+v", res.Paystack)
	}

	order := e.orders.get(res.OrderID)
	if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusUnpaid {
		t.Fatalf("unexpected order state %s/%s", order.Status, order.PaymentStatus)
	}
	if len(order.OrderItems) != 1 || order.OrderItems[0].Quantity != 2 {
		t.Fatalf("expected one merged line of 2, got %+v", order.OrderItems)
	}
	if order.Email != "ada@example.com" || order.ShippingAddress.Email != "Ada@Example.com" {
		t.Fatalf("unexpected emails %q / %q", order.Email, order.ShippingAddress.Email)
	}
	if e.products.stock("p-serum") != 10 {
		t.Fatalf("stock must not move before payment")
	}
	if got := e.publisher.types(); len(got) != 1 || got[0] != events.EventOrderCreated {
		t.Fatalf("expected order.created event, got %v", got)
	}
	if len(e.hub.events) != 1 || e.hub.events[0] != BroadcastOrderCreated {
		t.Fatalf("expected dashboard broadcast, got %v", e.hub.events)
	}
}

func TestCreateOrderWithPromo(t *testing.T) {
	e := newTestEnv(serum())
	lagosCharges(e)
	e.promos = newFakePromos(models.Promo{Code: "GLOW10", DiscountType: models.DiscountPercent, Value: dec("10"), Active: true})
	e.promo.repo = e.promos

	req := checkoutRequest(CheckoutLine{ID: "p-serum", Quantity: 2})
	req.PromoCode = "glow10"
	total := dec("11000")
	req.ClientTotal = &total

	res, err := e.checkout.CreateOrder(context.Background(), req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := e.orders.get(res.OrderID)
	if !order.DiscountAmount.Equal(dec("1000")) || order.PromoCode != "GLOW10" {
		t.Fatalf("unexpected discount %s / %s", order.DiscountAmount, order.PromoCode)
	}
	if e.promos.items["GLOW10"].UsedCount != 0 {
		t.Fatalf("promo must not be redeemed before payment")
	}
}

func TestCreateOrderRejections(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*CheckoutRequest)
		want error
	}{
		{"empty cart", func(r *CheckoutRequest) { r.Cart = nil }, ErrEmptyCart},
		{"unknown provider", func(r *CheckoutRequest) { r.PaymentProvider = "stripe" }, ErrUnsupportedProvider},
		{"unknown product", func(r *CheckoutRequest) { r.Cart = []CheckoutLine{{ID: "nope", Quantity: 1}} }, ErrProductNotFound},
		{"zero quantity", func(r *CheckoutRequest) { r.Cart[0].Quantity = 0 }, ErrInvalidInput},
		{"not enough stock", func(r *CheckoutRequest) { r.Cart = []CheckoutLine{{ID: "p-soap", Quantity: 2}} }, ErrInsufficientStock},
		{"bad promo", func(r *CheckoutRequest) { r.PromoCode = "FAKE" }, ErrPromoNotFound},
		{"total mismatch", func(r *CheckoutRequest) {
			v := dec("6998.99")
			r.ClientTotal = &v
		}, ErrTotalMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(serum(), soap())
			lagosCharges(e)
			req := checkoutRequest(CheckoutLine{ID: "p-serum", Quantity: 1})
			tt.mut(&req)

			_, err := e.checkout.CreateOrder(context.Background(), req, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(e.orders.items) != 0 {
				t.Fatalf("no order should be persisted")
			}
		})
	}
}

func TestCreateOrderAcceptsTotalWithinTolerance(t *testing.T) {
	e := newTestEnv(serum())
	lagosCharges(e)
	req := checkoutRequest(CheckoutLine{ID: "p-serum", Quantity: 1})
	v := dec("7000.80")
	req.ClientTotal = &v

	if _, err := e.checkout.CreateOrder(context.Background(), req, ""); err != nil {
		t.Fatalf("expected total within tolerance to pass, got %v", err)
	}
}

func TestCreateOrderProviderFailureKeepsOrder(t *testing.T) {
	e := newTestEnv(serum())
	lagosCharges(e)
	e.paystack.initErr = errors.New("connection refused")

	res, err := e.checkout.CreateOrder(context.Background(), checkoutRequest(CheckoutLine{ID: "p-serum", Quantity: 1}), "")
	if !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
	if res == nil || res.OrderID == "" || res.Paystack != nil {
		t.Fatalf("expected partial result without session, got %+v", res)
	}
	if e.orders.get(res.OrderID) == nil {
		t.Fatalf("order should be kept for a later retry")
	}
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	e := newTestEnv(serum())
	lagosCharges(e)
	req := checkoutRequest(CheckoutLine{ID: "p-serum", Quantity: 1})
	ctx := context.Background()

	first, err := e.checkout.CreateOrder(ctx, req, "idem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.checkout.CreateOrder(ctx, req, "idem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.OrderID != second.OrderID {
		t.Fatalf("replay returned a different order: %s vs %s", first.OrderID, second.OrderID)
	}
	if len(e.orders.items) != 1 {
		t.Fatalf("expected a single order, got %d", len(e.orders.items))
	}
	if second.Paystack == nil || !strings.HasPrefix(second.Paystack.AuthorizationURL, "https://pay.example/") {
		t.Fatalf("replay should carry the stored payment url, got %+v", second.Paystack)
	}
}

func TestMergeLines(t *testing.T) {
	ids, qty, err := mergeLines([]CheckoutLine{
		{ID: "b", Quantity: 1},
		{ID: "a", Quantity: 2},
		{ID: " b ", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(ids, ",") != "b,a" || qty["b"] != 4 || qty["a"] != 2 {
		t.Fatalf("unexpected merge %v %v", ids, qty)
	}
}
