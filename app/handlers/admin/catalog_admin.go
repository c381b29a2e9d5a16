package admin

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/services"
)

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !h.bind(w, r, "AdminHandler.CreateProduct", &in) {
		return
	}
	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.CreateProduct", err)
		return
	}
	h.render.JSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !h.bind(w, r, "AdminHandler.UpdateProduct", &in) {
		return
	}
	product, err := h.products.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.UpdateProduct", err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.DeleteProduct", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ListPromos", err)
		return
	}
	if promos == nil {
		promos = []models.Promo{}
	}
	h.render.JSON(w, http.StatusOK, promos)
}

func (h *AdminHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var in services.PromoInput
	if !h.bind(w, r, "AdminHandler.CreatePromo", &in) {
		return
	}
	promo, err := h.promos.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.CreatePromo", err)
		return
	}
	h.render.JSON(w, http.StatusCreated, promo)
}

func (h *AdminHandler) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	var in services.PromoUpdate
	if !h.bind(w, r, "AdminHandler.UpdatePromo", &in) {
		return
	}
	promo, err := h.promos.Update(r.Context(), mux.Vars(r)["code"], in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.UpdatePromo", err)
		return
	}
	h.render.JSON(w, http.StatusOK, promo)
}

func (h *AdminHandler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	if err := h.promos.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.DeletePromo", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ListDeliveryCharges(w http.ResponseWriter, r *http.Request) {
	rows, err := h.delivery.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ListDeliveryCharges", err)
		return
	}
	if rows == nil {
		rows = []models.DeliveryCharge{}
	}
	h.render.JSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) CreateDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	var in services.DeliveryChargeInput
	if !h.bind(w, r, "AdminHandler.CreateDeliveryCharge", &in) {
		return
	}
	row, err := h.delivery.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.CreateDeliveryCharge", err)
		return
	}
	h.render.JSON(w, http.StatusCreated, row)
}

func (h *AdminHandler) UpdateDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	var in services.DeliveryChargeInput
	if !h.bind(w, r, "AdminHandler.UpdateDeliveryCharge", &in) {
		return
	}
	row, err := h.delivery.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.UpdateDeliveryCharge", err)
		return
	}
	h.render.JSON(w, http.StatusOK, row)
}

func (h *AdminHandler) DeleteDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	if err := h.delivery.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.DeleteDeliveryCharge", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.drivers.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ListDrivers", err)
		return
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	h.render.JSON(w, http.StatusOK, drivers)
}

func (h *AdminHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var in services.DriverInput
	if !h.bind(w, r, "AdminHandler.CreateDriver", &in) {
		return
	}
	driver, err := h.drivers.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.CreateDriver", err)
		return
	}
	h.render.JSON(w, http.StatusCreated, driver)
}

func (h *AdminHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var in services.DriverInput
	if !h.bind(w, r, "AdminHandler.UpdateDriver", &in) {
		return
	}
	driver, err := h.drivers.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.UpdateDriver", err)
		return
	}
	h.render.JSON(w, http.StatusOK, driver)
}

func (h *AdminHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := h.drivers.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.DeleteDriver", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
