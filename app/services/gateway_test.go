package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/models/other"
)

func TestPaystackClient(t *testing.T) {
	var initReq other.PaystackInitializeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/transaction/initialize":
			json.NewDecoder(r.Body).Decode(&initReq)
			w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"TKB-order-1"}}`))
		case "/transaction/verify/TKB-order-1":
			w.Write([]byte(`{"status":true,"message":"ok","data":{"id":4099,"status":"success","reference":"TKB-order-1","amount":1200050,"currency":"NGN","metadata":{"order_id":"order-1"}}}`))
		case "/balance":
			w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewPaystackClient("sk_test", srv.URL, "https://tkbglow.com/checkout/callback")
	ctx := context.Background()
	order := &models.Order{ID: "order-1", Email: "ada@example.com", Total: dec("12000.50")}

	session, err := c.Initialize(ctx, order, "TKB-order-1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if session.AuthorizationURL != "https://checkout.paystack.com/abc" || session.AccessCode != "abc" {
		t.Fatalf("unexpected session %+v", session)
	}
	if initReq.Amount != 1200050 || initReq.Currency != "NGN" || initReq.Metadata["order_id"] != "order-1" {
		t.Fatalf("unexpected initialize payload %+v", initReq)
	}

	vp, err := c.Verify(ctx, "TKB-order-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !vp.Successful || !vp.Amount.Equal(dec("12000.50")) || vp.TransactionID != "4099" || vp.OrderID != "order-1" {
		t.Fatalf("unexpected verification %+v", vp)
	}

	if err := c.Ping(ctx); !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider for status=false, got %v", err)
	}
	if _, err := c.Verify(ctx, "unknown"); !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider for 404, got %v", err)
	}

	bad := NewPaystackClient("wrong", srv.URL, "")
	if _, err := bad.Initialize(ctx, order, "x"); !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider for 401, got %v", err)
	}
}

func TestVerifyPaystackSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	if !VerifyPaystackSignature("secret", body, sign("secret", body)) {
		t.Fatalf("expected matching signature")
	}
	if VerifyPaystackSignature("secret", body, sign("other", body)) {
		t.Fatalf("expected mismatch for another key")
	}
	if VerifyPaystackSignature("", body, sign("", body)) {
		t.Fatalf("an empty secret must never verify")
	}
}

func TestFlutterwaveClient(t *testing.T) {
	var payReq other.FlutterwavePaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v3/payments":
			json.NewDecoder(r.Body).Decode(&payReq)
			w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"link":"https://checkout.flutterwave.com/v3/hosted/pay/xyz"}}`))
		case r.URL.Path == "/v3/transactions/777/verify":
			w.Write([]byte(`{"status":"success","message":"ok","data":{"id":777,"tx_ref":"FLW-order-1","amount":12000,"currency":"NGN","status":"successful","meta":{"order_id":"order-1"}}}`))
		case r.URL.Path == "/v3/transactions/verify_by_reference" && r.URL.Query().Get("tx_ref") == "FLW-order-1":
			w.Write([]byte(`{"status":"success","message":"ok","data":{"id":777,"tx_ref":"FLW-order-1","amount":12000,"currency":"NGN","status":"pending"}}`))
		case r.URL.Path == "/v3/transactions/777/refund":
			w.Write([]byte(`{"status":"success","message":"Transaction refund initiated","data":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewFlutterwaveClient("FLWSECK_TEST", srv.URL, "https://tkbglow.com/checkout/callback")
	ctx := context.Background()
	order := &models.Order{
		ID:              "order-1",
		Email:           "ada@example.com",
		Total:           dec("12000"),
		ShippingAddress: models.ShippingAddress{FullName: "Ada Obi", Phone: "08031234567"},
	}

	session, err := c.Initialize(ctx, order, "FLW-order-1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if session.Reference != "FLW-order-1" || session.AuthorizationURL == "" {
		t.Fatalf("unexpected session %+v", session)
	}
	if payReq.Amount != "12000.00" || payReq.Customer.Name != "Ada Obi" || payReq.Meta["order_id"] != "order-1" {
		t.Fatalf("unexpected payment payload %+v", payReq)
	}

	vp, err := c.Verify(ctx, "777")
	if err != nil {
		t.Fatalf("verify by id: %v", err)
	}
	if !vp.Successful || vp.Reference != "FLW-order-1" || vp.OrderID != "order-1" || !vp.Amount.Equal(dec("12000")) {
		t.Fatalf("unexpected verification %+v", vp)
	}

	vp, err = c.Verify(ctx, "FLW-order-1")
	if err != nil {
		t.Fatalf("verify by reference: %v", err)
	}
	if vp.Successful {
		t.Fatalf("pending transaction must not count as successful")
	}

	if err := c.Refund(ctx, order); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without transaction id, got %v", err)
	}
	order.ProviderTransactionID = "777"
	if err := c.Refund(ctx, order); err != nil {
		t.Fatalf("refund: %v", err)
	}
}

func TestGatewaysGet(t *testing.T) {
	g := Gateways{models.ProviderPaystack: &fakeGateway{name: models.ProviderPaystack}}
	if _, err := g.Get(models.ProviderPaystack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Get("opay"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestReturnURL(t *testing.T) {
	tests := []struct {
		base, want string
	}{
		{"https://tkbglow.com/checkout/success", "https://tkbglow.com/checkout/success?orderId=o-1"},
		{"https://tkbglow.com/checkout/success?provider=paystack", "https://tkbglow.com/checkout/success?orderId=o-1&provider=paystack"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := returnURL(tt.base, "o-1"); got != tt.want {
			t.Fatalf("returnURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
