package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/unrolled/render"
)

type NewsletterHandler struct {
	render    *render.Render
	validator *validator.Validate
	subs      Subscriptions
}

func NewNewsletterHandler(render *render.Render, validator *validator.Validate, subs Subscriptions) *NewsletterHandler {
	return &NewsletterHandler{render: render, validator: validator, subs: subs}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (h *NewsletterHandler) decode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req subscribeRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.WriteError(h.render, w, "NewsletterHandler.decode", err)
		return "", false
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.Struct(&req); err != nil {
		helpers.WriteValidation(h.render, w, err)
		return "", false
	}
	return req.Email, true
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	email, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.subs.Subscribe(r.Context(), email)
	if err != nil {
		helpers.WriteError(h.render, w, "NewsletterHandler.Subscribe", err)
		return
	}
	msg := "subscribed"
	if !created {
		msg = "already subscribed"
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.subs.Unsubscribe(r.Context(), email); err != nil {
		helpers.WriteError(h.render, w, "NewsletterHandler.Unsubscribe", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "unsubscribed"})
}
