package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/tkbglow/glow-api/app/utils/renderer"
)

type fakeSessions struct {
	adminID, role string
	cleared bool
}

func (f *fakeSessions) GetAdmin(r *http.Request) (string, string) { return f.adminID, f.role }

func (f *fakeSessions) SetAdmin(w http.ResponseWriter, r *http.Request, adminID, role string) error {
	f.adminID, f.role = adminID, role
	return nil
}

func (f *fakeSessions) ClearSession(w http.ResponseWriter, r *http.Request) error {
	f.adminID, f.role, f.cleared = "", "", true
	return nil
}

type fakeAuth struct{}

func (fakeAuth) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	if email != "admin@tkbglow.com" || password != "hunter22" {
		return nil, services.ErrInvalidCredentials
	}
	return &models.User{ID: "admin-1", Email: email, Role: models.RoleAdmin}, nil
}

// fakeOrders embeds the interface so tests only implement what they call.
type fakeOrders struct {
	OrderManager
	filter   repositories.OrderFilter
	status   models.OrderStatus
	kind     string
	rider    *services.RiderInfo
	driverID string
}

func (f *fakeOrders) List(ctx context.Context, flt repositories.OrderFilter) ([]models.Order, int64, error) {
	f.filter = flt
	return []models.Order{{ID: "o-1"}}, 1, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	f.status = next
	if next == models.OrderStatusDelivered {
		return nil, services.ErrInvalidTransition
	}
	return &models.Order{ID: id, Status: next}, nil
}

func (f *fakeOrders) Notify(ctx context.Context, id, kind, message string) (string, string, error) {
	f.kind = kind
	return "https://wa.me/2348031234567?text=hi", "hi", nil
}

func (f *fakeOrders) SendEmail(ctx context.Context, id, kind string, rider *services.RiderInfo) error {
	f.kind, f.rider = kind, rider
	return nil
}

func (f *fakeOrders) AssignDriver(ctx context.Context, id, driverID string) (*models.Order, error) {
	f.driverID = driverID
	return &models.Order{ID: id, DriverID: &driverID}, nil
}

type fakePayments struct {
	PaymentManager
	provider string
	pingErr  error
}

func (f *fakePayments) MarkPaid(ctx context.Context, orderID, provider, reference, txID string) (*models.Order, error) {
	f.provider = provider
	return &models.Order{ID: orderID, PaymentStatus: models.PaymentStatusPaid}, nil
}

func (f *fakePayments) ProviderHealth(ctx context.Context, provider string) error {
	f.provider = provider
	return f.pingErr
}

type fakeExporter struct {
	filter repositories.OrderFilter
	err    error
}

func (f *fakeExporter) WriteOrders(ctx context.Context, flt repositories.OrderFilter, w io.Writer) error {
	f.filter = flt
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("PK\x03\x04"))
	return err
}

type fakeNewsletter struct {
	NewsletterManager
	subject string
}

func (f *fakeNewsletter) Send(ctx context.Context, subject, html string) (*services.SendResult, error) {
	f.subject = subject
	return &services.SendResult{Sent: 3, Failed: 1}, nil
}

type fixture struct {
	h          *AdminHandler
	sessions   *fakeSessions
	orders     *fakeOrders
	payments   *fakePayments
	exporter   *fakeExporter
	newsletter *fakeNewsletter
}

func newFixture() *fixture {
	f := &fixture{
		sessions:   &fakeSessions{},
		orders:     &fakeOrders{},
		payments:   &fakePayments{},
		exporter:   &fakeExporter{},
		newsletter: &fakeNewsletter{},
	}
	f.h = NewAdminHandler(renderer.New(), validator.New(), f.sessions, fakeAuth{},
		f.orders, f.payments, nil, nil, nil, nil, f.newsletter, nil, f.exporter, nil)
	return f
}

func jsonRequest(method, target, body string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestLoginLogout(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.h.Login(rec, jsonRequest(http.MethodPost, "/api/admin/login", `{"email": "admin@tkbglow.com", "password": "wrong"}`, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if f.sessions.adminID != "" {
		t.Fatalf("failed login must not open a session")
	}

	rec = httptest.NewRecorder()
	f.h.Login(rec, jsonRequest(http.MethodPost, "/api/admin/login", `{"email": "Admin@TKBGlow.com", "password": "hunter22"}`, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.sessions.adminID != "admin-1" || f.sessions.role != models.RoleAdmin {
		t.Fatalf("expected admin session, got %+v", f.sessions)
	}

	rec = httptest.NewRecorder()
	f.h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	if rec.Code != http.StatusOK || !f.sessions.cleared {
		t.Fatalf("expected session to be cleared, got %d", rec.Code)
	}
}

func TestListOrdersFilter(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.h.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=pending&q=ada&page=3&limit=20", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := repositories.OrderFilter{Status: "pending", Query: "ada", Limit: 20, Offset: 40}
	if f.orders.filter != want {
		t.Fatalf("expected filter %+v, got %+v", want, f.orders.filter)
	}

	rec = httptest.NewRecorder()
	f.h.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?limit=5000", nil))
	if f.orders.filter.Limit != defaultOrderPageSize {
		t.Fatalf("oversized limit should fall back to %d, got %d", defaultOrderPageSize, f.orders.filter.Limit)
	}
}

func TestExportOrders(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.h.ExportOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders/export?status=delivered", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("expected an xlsx attachment, got %q", rec.Header().Get("Content-Disposition"))
	}
	if f.exporter.filter.Limit != 0 || f.exporter.filter.Status != "delivered" {
		t.Fatalf("export should be unpaginated and filtered, got %+v", f.exporter.filter)
	}

	f.exporter.err = errors.New("disk full")
	rec = httptest.NewRecorder()
	f.h.ExportOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders/export", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		body   string
		status int
	}{
		{`{"status": "Processing"}`, http.StatusOK},
		{`{"status": "lost"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`{"status": "delivered"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		f := newFixture()
		rec := httptest.NewRecorder()
		f.h.UpdateOrderStatus(rec, jsonRequest(http.MethodPut, "/api/orders/o-1/status", tt.body, map[string]string{"id": "o-1"}))
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.body, tt.status, rec.Code)
		}
	}
}

func TestOrderActions(t *testing.T) {
	f := newFixture()
	vars := map[string]string{"id": "o-1"}

	rec := httptest.NewRecorder()
	f.h.NotifyCustomer(rec, jsonRequest(http.MethodPost, "/api/orders/o-1/notify", `{"type": "delivery_started"}`, vars))
	if rec.Code != http.StatusOK {
		t.Fatalf("notify: expected 200, got %d", rec.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || !strings.HasPrefix(out["link"], "https://wa.me/") {
		t.Fatalf("expected a WhatsApp link, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	f.h.NotifyCustomer(rec, jsonRequest(http.MethodPost, "/api/orders/o-1/notify", `{"type": "custom"}`, vars))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("custom notify without message should be 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.h.SendOrderEmail(rec, jsonRequest(http.MethodPost, "/api/orders/o-1/send-email",
		`{"type": "delivery_details", "rider": {"name": "Musa", "phone": "08030000000"}}`, vars))
	if rec.Code != http.StatusOK || f.orders.kind != services.EmailDeliveryDetails || f.orders.rider == nil || f.orders.rider.Name != "Musa" {
		t.Fatalf("send-email: unexpected result %d %+v", rec.Code, f.orders.rider)
	}

	rec = httptest.NewRecorder()
	f.h.AssignDriver(rec, jsonRequest(http.MethodPut, "/api/admin/orders/o-1/driver", `{"driver_id": "d-1"}`, vars))
	if rec.Code != http.StatusOK || f.orders.driverID != "d-1" {
		t.Fatalf("assign driver: unexpected result %d", rec.Code)
	}

	req := jsonRequest(http.MethodPost, "/api/orders/o-1/mark-paid", `{}`, vars)
	req = req.WithContext(helpers.WithAdmin(req.Context(), "admin-1"))
	rec = httptest.NewRecorder()
	f.h.MarkOrderPaid(rec, req)
	if rec.Code != http.StatusOK || f.payments.provider != models.ProviderManual {
		t.Fatalf("mark-paid should default to manual, got %d %q", rec.Code, f.payments.provider)
	}
}

func TestProviderHealth(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.h.TestPaystack(rec, httptest.NewRequest(http.MethodGet, "/api/admin/test-paystack", nil))
	if rec.Code != http.StatusOK || f.payments.provider != models.ProviderPaystack {
		t.Fatalf("expected paystack check, got %d %q", rec.Code, f.payments.provider)
	}

	f.payments.pingErr = errors.New("invalid key")
	rec = httptest.NewRecorder()
	f.h.TestFlutterwave(rec, httptest.NewRequest(http.MethodGet, "/api/admin/test-flutterwave", nil))
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if rec.Code != http.StatusOK || out["ok"] != false || out["provider"] != models.ProviderFlutterwave {
		t.Fatalf("expected ok=false for flutterwave, got %d %v", rec.Code, out)
	}
}

func TestSendNewsletter(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.h.SendNewsletter(rec, jsonRequest(http.MethodPost, "/api/newsletter/send", `{"subject": "New drop"}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing html should be 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.h.SendNewsletter(rec, jsonRequest(http.MethodPost, "/api/newsletter/send", `{"subject": "New drop", "html": "<p>hi</p>"}`, nil))
	if rec.Code != http.StatusOK || f.newsletter.subject != "New drop" {
		t.Fatalf("expected send, got %d", rec.Code)
	}
	var res services.SendResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Sent != 3 || res.Failed != 1 {
		t.Fatalf("unexpected result %s", rec.Body.String())
	}
}
