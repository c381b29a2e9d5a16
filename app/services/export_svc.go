package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/utils/format"
)

type ExportService struct {
	orders repositories.OrderRepository
}

func NewExportService(orders repositories.OrderRepository) *ExportService {
	return &ExportService{orders: orders}
}

var orderExportHeaders = []string{
	"Order ID", "Date", "Customer", "Email", "Phone", "State", "City",
	"Status", "Payment", "Provider", "Reference", "Items",
	"Subtotal", "Discount", "Promo", "Delivery", "Total", "Total (NGN)",
}

// WriteOrders writes the orders matching f as an .xlsx workbook to w.
func (s *ExportService) WriteOrders(ctx context.Context, f repositories.OrderFilter, w io.Writer) error {
	orders, _, err := s.orders.List(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range orderExportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		items := make([]string, 0, len(o.OrderItems))
		for _, it := range o.OrderItems {
			items = append(items, fmt.Sprintf("%s x%d", it.Title, it.Quantity))
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(o.ShippingAddress.FullName)
		row.AddCell().SetValue(o.Email)
		row.AddCell().SetValue(o.ShippingAddress.Phone)
		row.AddCell().SetValue(o.ShippingAddress.State)
		row.AddCell().SetValue(o.ShippingAddress.City)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.PaymentStatus)
		row.AddCell().SetValue(o.PaymentProvider)
		row.AddCell().SetValue(o.ProviderReference)
		row.AddCell().SetValue(strings.Join(items, "; "))
		row.AddCell().SetFloat(o.Subtotal.InexactFloat64())
		row.AddCell().SetFloat(o.DiscountAmount.InexactFloat64())
		row.AddCell().SetValue(o.PromoCode)
		row.AddCell().SetFloat(o.DeliveryCharge.InexactFloat64())
		row.AddCell().SetFloat(o.Total.InexactFloat64())
		row.AddCell().SetValue(format.FormatNaira(o.Total))
	}

	return file.Write(w)
}
