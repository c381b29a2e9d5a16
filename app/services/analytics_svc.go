package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

type DashboardStats struct {
	Products      int64            `json:"products"`
	Orders        int              `json:"orders"`
	Customers     int              `json:"customers"`
	Revenue       decimal.Decimal  `json:"revenue"`
	PendingOrders int              `json:"pending_orders"`
	LowStock      []models.Product `json:"low_stock"`
	LowStockCount int              `json:"low_stock_count"`
}

type DayRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type GroupRevenue struct {
	Group   string          `json:"group"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DashboardCharts struct {
	RevenueByDay       []DayRevenue   `json:"revenue_by_day"`
	StatusDistribution []StatusCount  `json:"status_distribution"`
	RevenueByGroup     []GroupRevenue `json:"revenue_by_group"`
}

type CustomerDetail struct {
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	Orders        []models.Order  `json:"orders"`
	OrderCount    int             `json:"order_count"`
	LifetimeSpend decimal.Decimal `json:"lifetime_spend"`
}

const (
	GroupDelivered  = "delivered"
	GroupInProgress = "in_progress"
	GroupCancelled  = "cancelled"

	chartDays = 7
)

type AnalyticsService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
}

func NewAnalyticsService(orders repositories.OrderRepository, products repositories.ProductRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders, products: products}
}

func customerKey(o repositories.OrderSummary) string {
	if o.UserID != "" {
		return "u:" + o.UserID
	}
	return "e:" + strings.ToLower(o.Email)
}

func (s *AnalyticsService) Stats(ctx context.Context) (*DashboardStats, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	low, err := s.products.LowStock(ctx, models.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock products: %w", err)
	}
	rows, err := s.orders.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	stats := &DashboardStats{
		Products:      productCount,
		Orders:        len(rows),
		Revenue:       decimal.Zero,
		LowStock:      low,
		LowStockCount: len(low),
	}
	if stats.LowStock == nil {
		stats.LowStock = []models.Product{}
	}

	customers := make(map[string]struct{})
	for _, o := range rows {
		customers[customerKey(o)] = struct{}{}
		if o.PaymentStatus == models.PaymentStatusPaid {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
		if o.Status == models.OrderStatusPending {
			stats.PendingOrders++
		}
	}
	stats.Customers = len(customers)
	return stats, nil
}

func statusGroup(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusDelivered:
		return GroupDelivered
	case models.OrderStatusCancelled, models.OrderStatusRefunded:
		return GroupCancelled
	default:
		return GroupInProgress
	}
}

// Charts builds revenue for the last seven days that have orders, the status
// distribution and revenue per status group.
func (s *AnalyticsService) Charts(ctx context.Context) (*DashboardCharts, error) {
	rows, err := s.orders.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return buildCharts(rows), nil
}

func buildCharts(rows []repositories.OrderSummary) *DashboardCharts {
	byDay := make(map[string]*DayRevenue)
	byStatus := make(map[models.OrderStatus]int)
	byGroup := map[string]decimal.Decimal{
		GroupDelivered:  decimal.Zero,
		GroupInProgress: decimal.Zero,
		GroupCancelled:  decimal.Zero,
	}

	for _, o := range rows {
		day := o.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DayRevenue{Date: day, Revenue: decimal.Zero}
			byDay[day] = d
		}
		d.Orders++
		if o.PaymentStatus == models.PaymentStatusPaid {
			d.Revenue = d.Revenue.Add(o.Total)
		}

		byStatus[o.Status]++
		g := statusGroup(o.Status)
		byGroup[g] = byGroup[g].Add(o.Total)
	}

	days := make([]string, 0, len(byDay))
	for k := range byDay {
		days = append(days, k)
	}
	sort.Strings(days)
	if len(days) > chartDays {
		days = days[len(days)-chartDays:]
	}

	charts := &DashboardCharts{
		RevenueByDay:       make([]DayRevenue, 0, len(days)),
		StatusDistribution: make([]StatusCount, 0, len(byStatus)),
	}
	for _, day := range days {
		charts.RevenueByDay = append(charts.RevenueByDay, *byDay[day])
	}
	for _, st := range models.AllOrderStatuses {
		if n := byStatus[st]; n > 0 {
			charts.StatusDistribution = append(charts.StatusDistribution, StatusCount{Status: string(st), Count: n})
		}
	}
	for _, g := range []string{GroupDelivered, GroupInProgress, GroupCancelled} {
		charts.RevenueByGroup = append(charts.RevenueByGroup, GroupRevenue{Group: g, Revenue: byGroup[g]})
	}
	return charts
}

func (s *AnalyticsService) Customer(ctx context.Context, userID string) (*CustomerDetail, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	detail := &CustomerDetail{UserID: userID, Orders: orders, OrderCount: len(orders), LifetimeSpend: decimal.Zero}
	for _, o := range orders {
		if detail.Email == "" {
			detail.Email = o.Email
		}
		if o.IsPaid() {
			detail.LifetimeSpend = detail.LifetimeSpend.Add(o.Total)
		}
	}
	return detail, nil
}
