package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/cache"
	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]*models.Product
}

func newFakeProducts(ps ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]*models.Product{}}
	for i := range ps {
		p := ps[i]
		f.items[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) List(ctx context.Context, flt repositories.ProductFilter) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.items {
		if flt.Category != "" && !strings.EqualFold(p.Category, flt.Category) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) DecrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (f *fakeProducts) IncrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (f *fakeProducts) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeProducts) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.items {
		if p.Stock <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Stock
}

type fakeOrders struct {
	mu    sync.Mutex
	items map[string]*models.Order
}

func newFakeOrders(os ...models.Order) *fakeOrders {
	f := &fakeOrders{items: map[string]*models.Order{}}
	for i := range os {
		o := os[i]
		f.items[o.ID] = &o
	}
	return f
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	cp.TrackingInfo = append([]models.TrackingEvent(nil), o.TrackingInfo...)
	return &cp
}

func (f *fakeOrders) Create(ctx context.Context, tx *gorm.DB, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now()
	for i := range o.OrderItems {
		o.OrderItems[i].OrderID = o.ID
	}
	f.items[o.ID] = cloneOrder(o)
	return nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.items[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, nil
}

func (f *fakeOrders) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOrders) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.items {
		if o.ProviderReference == ref {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.items {
		if o.UserID == userID {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) List(ctx context.Context, flt repositories.OrderFilter) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.items {
		if flt.Status != "" && string(o.Status) != flt.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeOrders) Save(ctx context.Context, tx *gorm.DB, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[o.ID] = cloneOrder(o)
	return nil
}

func (f *fakeOrders) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "provider_reference":
			o.ProviderReference = v.(string)
		case "payment_url":
			o.PaymentURL = v.(string)
		case "payment_status":
			o.PaymentStatus = v.(string)
		case "driver_id":
			if s, ok := v.(string); ok {
				o.DriverID = &s
			} else {
				o.DriverID = nil
			}
		}
	}
	return nil
}

func (f *fakeOrders) SetStockReserved(ctx context.Context, tx *gorm.DB, itemIDs []string, reserved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = true
	}
	for _, o := range f.items {
		for i := range o.OrderItems {
			if ids[o.OrderItems[i].ID] {
				o.OrderItems[i].StockReserved = reserved
			}
		}
	}
	return nil
}

func (f *fakeOrders) Summaries(ctx context.Context) ([]repositories.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repositories.OrderSummary
	for _, o := range f.items {
		out = append(out, repositories.OrderSummary{
			ID: o.ID, UserID: o.UserID, Email: o.Email, Status: o.Status,
			PaymentStatus: o.PaymentStatus, Total: o.Total, CreatedAt: o.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeOrders) get(id string) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneOrder(f.items[id])
}

type fakePromos struct {
	mu          sync.Mutex
	items       map[string]*models.Promo
	redemptions map[string]models.PromoRedemption
}

func newFakePromos(ps ...models.Promo) *fakePromos {
	f := &fakePromos{items: map[string]*models.Promo{}, redemptions: map[string]models.PromoRedemption{}}
	for i := range ps {
		p := ps[i]
		f.items[p.Code] = &p
	}
	return f
}

func (f *fakePromos) GetByCode(ctx context.Context, code string) (*models.Promo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[models.NormalizePromoCode(code)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePromos) List(ctx context.Context) ([]models.Promo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Promo
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePromos) Create(ctx context.Context, p *models.Promo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.items[p.Code] = &cp
	return nil
}

func (f *fakePromos) Update(ctx context.Context, code string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[models.NormalizePromoCode(code)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["active"]; ok {
		p.Active = v.(bool)
	}
	if v, ok := fields["discount_type"]; ok {
		p.DiscountType = v.(string)
	}
	if v, ok := fields["value"]; ok {
		p.Value = v.(decimal.Decimal)
	}
	if v, ok := fields["min_subtotal"]; ok {
		p.MinSubtotal = v.(decimal.Decimal)
	}
	return nil
}

func (f *fakePromos) Delete(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, models.NormalizePromoCode(code))
	return nil
}

func (f *fakePromos) IncrementUsage(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[code]
	if !ok || p.Exhausted() {
		return false, nil
	}
	p.UsedCount++
	return true, nil
}

func (f *fakePromos) RedemptionExists(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.redemptions[orderID]
	return ok, nil
}

func (f *fakePromos) CreateRedemption(ctx context.Context, tx *gorm.DB, r *models.PromoRedemption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redemptions[r.OrderID] = *r
	return nil
}

type fakeDeliveryCharges struct {
	rows  []models.DeliveryCharge
	calls int
}

func (f *fakeDeliveryCharges) ListActiveByState(ctx context.Context, state string) ([]models.DeliveryCharge, error) {
	f.calls++
	var out []models.DeliveryCharge
	for _, r := range f.rows {
		if strings.EqualFold(r.State, state) && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDeliveryCharges) List(ctx context.Context) ([]models.DeliveryCharge, error) {
	return f.rows, nil
}

func (f *fakeDeliveryCharges) GetByID(ctx context.Context, id string) (*models.DeliveryCharge, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeDeliveryCharges) Create(ctx context.Context, c *models.DeliveryCharge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeDeliveryCharges) Update(ctx context.Context, c *models.DeliveryCharge) error {
	for i := range f.rows {
		if f.rows[i].ID == c.ID {
			f.rows[i] = *c
		}
	}
	return nil
}

func (f *fakeDeliveryCharges) Delete(ctx context.Context, id string) error {
	out := f.rows[:0]
	for _, r := range f.rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	f.rows = out
	return nil
}

type fakeDrivers struct {
	items map[string]*models.Driver
}

func (f *fakeDrivers) List(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	for _, d := range f.items {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDrivers) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	if d, ok := f.items[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeDrivers) Create(ctx context.Context, d *models.Driver) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cp := *d
	f.items[d.ID] = &cp
	return nil
}

func (f *fakeDrivers) Update(ctx context.Context, d *models.Driver) error {
	cp := *d
	f.items[d.ID] = &cp
	return nil
}

func (f *fakeDrivers) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]bool
}

func (m *fakeMailer) SendHTMLEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[to] {
		return ErrInvalidInput
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHub) Broadcast(eventType string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, eventType)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *fakePublisher) Publish(ctx context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeGateway struct {
	name        string
	initErr     error
	verify      *VerifiedPayment
	refunded    []string
	initialized []string
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Initialize(ctx context.Context, order *models.Order, reference string) (*PaymentSession, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.initialized = append(g.initialized, reference)
	return &PaymentSession{
		Provider:         g.name,
		Reference:        reference,
		AccessCode:       "ac_" + order.ShortID(),
		AuthorizationURL: "https://pay.example/" + reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*VerifiedPayment, error) {
	if g.verify == nil {
		return nil, ErrPaymentProvider
	}
	vp := *g.verify
	if vp.Reference == "" {
		vp.Reference = reference
	}
	return &vp, nil
}

func (g *fakeGateway) Refund(ctx context.Context, order *models.Order) error {
	g.refunded = append(g.refunded, order.ID)
	return nil
}

func (g *fakeGateway) Ping(ctx context.Context) error { return nil }

// testEnv wires every service over the fakes.
type testEnv struct {
	products  *fakeProducts
	orders    *fakeOrders
	promos    *fakePromos
	charges   *fakeDeliveryCharges
	drivers   *fakeDrivers
	mailer    *fakeMailer
	hub       *fakeHub
	publisher *fakePublisher
	paystack  *fakeGateway
	flw       *fakeGateway
	cache     cache.Cache

	delivery *DeliveryService
	promo    *PromoService
	order    *OrderService
	payment  *PaymentService
	checkout *CheckoutService
}

func newTestEnv(products ...models.Product) *testEnv {
	e := &testEnv{
		products:  newFakeProducts(products...),
		orders:    newFakeOrders(),
		promos:    newFakePromos(),
		charges:   &fakeDeliveryCharges{},
		drivers:   &fakeDrivers{items: map[string]*models.Driver{}},
		mailer:    &fakeMailer{},
		hub:       &fakeHub{},
		publisher: &fakePublisher{},
		paystack:  &fakeGateway{name: models.ProviderPaystack},
		flw:       &fakeGateway{name: models.ProviderFlutterwave},
		cache:     cache.NewMemory(),
	}
	gateways := Gateways{
		models.ProviderPaystack:    e.paystack,
		models.ProviderFlutterwave: e.flw,
	}
	e.delivery = NewDeliveryService(e.charges, e.cache, dec("3500"))
	e.promo = NewPromoService(e.promos)
	e.order = NewOrderService(fakeTx{}, e.orders, e.products, e.drivers, e.mailer, e.publisher, e.hub)
	e.payment = NewPaymentService(fakeTx{}, e.orders, e.products, e.promo, e.order, gateways, e.cache, PaymentServiceConfig{
		PaystackSecret:  "sk_test_secret",
		FlutterwaveHash: "flw-hash",
	})
	e.checkout = NewCheckoutService(fakeTx{}, e.orders, e.products, e.delivery, e.promo, e.payment, e.cache, e.publisher, e.hub)
	return e
}
