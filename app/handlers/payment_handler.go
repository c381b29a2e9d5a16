package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/unrolled/render"
)

const (
	PaystackSignatureHeader = "x-paystack-signature"
	FlutterwaveHashHeader   = "verif-hash"

	maxWebhookBody = 1 << 20
)

type PaymentHandler struct {
	render   *render.Render
	payments PaymentVerifier
}

func NewPaymentHandler(render *render.Render, payments PaymentVerifier) *PaymentHandler {
	return &PaymentHandler{render: render, payments: payments}
}

// Verify is called from the storefront return page. Flutterwave redirects
// with transaction_id and tx_ref, Paystack with reference.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID := strings.TrimSpace(q.Get("orderId"))
	if orderID == "" {
		orderID = strings.TrimSpace(q.Get("order_id"))
	}
	if orderID == "" {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "orderId is required")
		return
	}

	provider := strings.ToLower(strings.TrimSpace(q.Get("provider")))
	reference := firstNonEmpty(q.Get("transaction_id"), q.Get("reference"), q.Get("tx_ref"), q.Get("trxref"))
	if provider == "" && q.Get("transaction_id") != "" {
		provider = models.ProviderFlutterwave
	}

	order, err := h.payments.Verify(r.Context(), orderID, provider, reference)
	if err != nil {
		helpers.WriteError(h.render, w, "PaymentHandler.Verify", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *PaymentHandler) PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "could not read body")
		return
	}
	h.ack(w, "PaymentHandler.PaystackWebhook", h.payments.HandlePaystackWebhook(r.Context(), body, r.Header.Get(PaystackSignatureHeader)))
}

func (h *PaymentHandler) FlutterwaveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		helpers.JSONError(h.render, w, http.StatusBadRequest, "could not read body")
		return
	}
	h.ack(w, "PaymentHandler.FlutterwaveWebhook", h.payments.HandleFlutterwaveWebhook(r.Context(), body, r.Header.Get(FlutterwaveHashHeader)))
}

// ack answers a provider webhook. Only internal failures return 5xx, which
// makes the provider retry.
func (h *PaymentHandler) ack(w http.ResponseWriter, where string, err error) {
	if err == nil {
		h.render.JSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	if errors.Is(err, services.ErrInvalidSignature) {
		log.Printf("WARNING: %s: %v", where, err)
		helpers.JSONError(h.render, w, http.StatusUnauthorized, err.Error())
		return
	}
	status := helpers.StatusFor(err)
	if status >= http.StatusInternalServerError {
		helpers.WriteError(h.render, w, where, err)
		return
	}
	log.Printf("%s: acknowledged with error: %v", where, err)
	h.render.JSON(w, http.StatusOK, map[string]any{"received": true, "error": err.Error()})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
