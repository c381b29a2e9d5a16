package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/utils/format"
)

type RiderInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
}

func (r *RiderInfo) empty() bool {
	return r == nil || (strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Phone) == "")
}

const emailShell = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
    .header { background: #556B2F; padding: 32px 20px; text-align: center; color: white; }
    .content { padding: 30px 20px; color: #333; }
    .order-info { background: #f9f9f9; padding: 15px; border-radius: 5px; margin: 20px 0; }
    .row { padding: 8px 0; border-bottom: 1px solid #eee; }
    .total { font-weight: bold; color: #556B2F; }
    .footer { background: #f9f9f9; padding: 20px; text-align: center; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
    <div class="footer"><p>&copy; TKB GLOW. All rights reserved.</p></div>
  </div>
</body>
</html>`

func orderLinesHTML(order *models.Order) string {
	var b strings.Builder
	for _, it := range order.OrderItems {
		fmt.Fprintf(&b, `<div class="row">%s × %d <span style="float:right">%s</span></div>`,
			html.EscapeString(it.Title), it.Quantity, format.FormatNaira(it.LineTotal))
	}
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, `<div class="row">Discount (%s) <span style="float:right">-%s</span></div>`,
			html.EscapeString(order.PromoCode), format.FormatNaira(order.DiscountAmount))
	}
	fmt.Fprintf(&b, `<div class="row">Delivery <span style="float:right">%s</span></div>`, format.FormatNaira(order.DeliveryCharge))
	fmt.Fprintf(&b, `<div class="row total">Total <span style="float:right">%s</span></div>`, format.FormatNaira(order.Total))
	return b.String()
}

func BuildOrderConfirmationEmail(order *models.Order) (string, string) {
	body := fmt.Sprintf(`
      <h2>Thank you for your order, %s</h2>
      <p>Your order has been received and is being processed.</p>
      <div class="order-info">
        <div class="row"><strong>Order ID:</strong> #%s</div>
        <div class="row"><strong>Order Date:</strong> %s</div>
        %s
      </div>
      <p>We will deliver to: %s</p>`,
		html.EscapeString(order.ShippingAddress.FullName),
		order.ShortID(),
		order.CreatedAt.Format("02 Jan 2006"),
		orderLinesHTML(order),
		html.EscapeString(order.ShippingAddress.OneLine()),
	)
	return "Your Order Confirmed 🎉", fmt.Sprintf(emailShell, "Order Confirmed! ✓", body)
}

func BuildDeliveryDetailsEmail(order *models.Order, rider *RiderInfo) (string, string) {
	riderHTML := "<p>Our rider will contact you shortly.</p>"
	if !rider.empty() {
		riderHTML = fmt.Sprintf(`
      <div class="order-info">
        <div class="row"><strong>Rider:</strong> %s</div>
        <div class="row"><strong>Phone:</strong> %s</div>
        <div class="row"><strong>Vehicle:</strong> %s</div>
      </div>`,
			html.EscapeString(rider.Name), html.EscapeString(rider.Phone), html.EscapeString(rider.Vehicle))
	}

	body := fmt.Sprintf(`
      <h2>Your order #%s is on the way!</h2>
      <p>Hi %s, your package has left our store and is heading to %s.</p>
      %s`,
		order.ShortID(),
		html.EscapeString(order.ShippingAddress.FullName),
		html.EscapeString(order.ShippingAddress.OneLine()),
		riderHTML,
	)
	return "Your order is on the way 🚚", fmt.Sprintf(emailShell, "Out for Delivery", body)
}

func BuildTrackingUpdateEmail(order *models.Order, status, message string) (string, string) {
	body := fmt.Sprintf(`
      <h2>Update on order #%s</h2>
      <div class="order-info">
        <div class="row"><strong>Status:</strong> %s</div>
        <div class="row">%s</div>
      </div>`,
		order.ShortID(),
		html.EscapeString(strings.ReplaceAll(status, "_", " ")),
		html.EscapeString(message),
	)
	return "Order update: " + strings.ReplaceAll(status, "_", " "), fmt.Sprintf(emailShell, "Order Update", body)
}
