package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render *render.Render
	orders OrderReader
}

func NewOrderHandler(render *render.Render, orders OrderReader) *OrderHandler {
	return &OrderHandler{render: render, orders: orders}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, "OrderHandler.GetOrder", err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	tokenUser, _, isCustomer := helpers.CustomerFromContext(r.Context())
	_, isAdmin := helpers.AdminFromContext(r.Context())

	if userID == "" {
		userID = tokenUser
	}
	if userID == "" {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "userId is required")
		return
	}
	if !isAdmin && (!isCustomer || tokenUser != userID) {
		helpers.JSONError(h.render, w, http.StatusForbidden, "you can only view your own orders")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		helpers.WriteError(h.render, w, "OrderHandler.ListOrders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.render.JSON(w, http.StatusOK, orders)
}
