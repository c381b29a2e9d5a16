package admin

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/services"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 200
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func orderFilter(r *http.Request) repositories.OrderFilter {
	q := r.URL.Query()
	limit := helpers.QueryInt(r, "limit", defaultOrderPageSize)
	if limit < 1 || limit > maxOrderPageSize {
		limit = defaultOrderPageSize
	}
	page := helpers.QueryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	return repositories.OrderFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Query:  strings.TrimSpace(q.Get("q")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f := orderFilter(r)
	orders, total, err := h.orders.List(r.Context(), f)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ListOrders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.render.JSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	f := orderFilter(r)
	f.Limit, f.Offset = 0, 0

	var buf bytes.Buffer
	if err := h.exporter.WriteOrders(r.Context(), f, &buf); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ExportOrders", err)
		return
	}

	name := fmt.Sprintf("tkb-orders-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("AdminHandler.ExportOrders: write failed: %v", err)
	}
}

func (h *AdminHandler) OrdersFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.ServeWS(w, r)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.bind(w, r, "AdminHandler.UpdateOrderStatus", &req) {
		return
	}
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		helpers.JSONError(h.render, w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], next)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.UpdateOrderStatus", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.CancelOrder", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

type trackRequest struct {
	Status  string `json:"status" validate:"required,max=50"`
	Message string `json:"message" validate:"max=500"`
}

func (h *AdminHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !h.bind(w, r, "AdminHandler.TrackOrder", &req) {
		return
	}
	order, err := h.orders.Track(r.Context(), mux.Vars(r)["id"], strings.TrimSpace(req.Status), strings.TrimSpace(req.Message))
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.TrackOrder", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

type notifyRequest struct {
	Type    string `json:"type" validate:"required,oneof=delivery_started refund custom"`
	Message string `json:"message" validate:"required_if=Type custom,max=1000"`
}

func (h *AdminHandler) NotifyCustomer(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !h.bind(w, r, "AdminHandler.NotifyCustomer", &req) {
		return
	}
	link, msg, err := h.orders.Notify(r.Context(), mux.Vars(r)["id"], req.Type, req.Message)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.NotifyCustomer", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]string{"link": link, "message": msg})
}

type sendEmailRequest struct {
	Type  string              `json:"type" validate:"required,oneof=order_confirmation delivery_details"`
	Rider *services.RiderInfo `json:"rider"`
}

func (h *AdminHandler) SendOrderEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if !h.bind(w, r, "AdminHandler.SendOrderEmail", &req) {
		return
	}
	if err := h.orders.SendEmail(r.Context(), mux.Vars(r)["id"], req.Type, req.Rider); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.SendOrderEmail", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type assignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
}

func (h *AdminHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	var req assignDriverRequest
	if !h.bind(w, r, "AdminHandler.AssignDriver", &req) {
		return
	}
	order, err := h.orders.AssignDriver(r.Context(), mux.Vars(r)["id"], req.DriverID)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.AssignDriver", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

type markPaidRequest struct {
	Provider      string `json:"provider" validate:"omitempty,oneof=paystack flutterwave manual"`
	Reference     string `json:"reference" validate:"max=100"`
	TransactionID string `json:"transaction_id" validate:"max=100"`
}

func (h *AdminHandler) MarkOrderPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if !h.bind(w, r, "AdminHandler.MarkOrderPaid", &req) {
		return
	}
	if req.Provider == "" {
		req.Provider = models.ProviderManual
	}

	id := mux.Vars(r)["id"]
	order, err := h.payments.MarkPaid(r.Context(), id, req.Provider, req.Reference, req.TransactionID)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.MarkOrderPaid", err)
		return
	}
	adminID, _ := helpers.AdminFromContext(r.Context())
	log.Printf("AdminHandler.MarkOrderPaid: order %s marked paid via %s by %s", id, req.Provider, adminID)
	h.render.JSON(w, http.StatusOK, order)
}

func (h *AdminHandler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.payments.Refund(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.RefundOrder", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

func (h *AdminHandler) ReinitializePayment(w http.ResponseWriter, r *http.Request) {
	res, err := h.payments.Reinitialize(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ReinitializePayment", err)
		return
	}
	h.render.JSON(w, http.StatusOK, res)
}
