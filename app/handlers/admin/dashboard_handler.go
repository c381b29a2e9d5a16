package admin

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/services"
)

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.Stats", err)
		return
	}
	h.render.JSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Charts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.analytics.Charts(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.Charts", err)
		return
	}
	h.render.JSON(w, http.StatusOK, charts)
}

func (h *AdminHandler) Customer(w http.ResponseWriter, r *http.Request) {
	detail, err := h.analytics.Customer(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.Customer", err)
		return
	}
	h.render.JSON(w, http.StatusOK, detail)
}

func (h *AdminHandler) TestPaystack(w http.ResponseWriter, r *http.Request) {
	h.providerHealth(w, r, models.ProviderPaystack)
}

func (h *AdminHandler) TestFlutterwave(w http.ResponseWriter, r *http.Request) {
	h.providerHealth(w, r, models.ProviderFlutterwave)
}

// providerHealth reports a rejected credential as ok=false with a 200.
func (h *AdminHandler) providerHealth(w http.ResponseWriter, r *http.Request, provider string) {
	err := h.payments.ProviderHealth(r.Context(), provider)
	if err != nil {
		log.Printf("AdminHandler.providerHealth: ❌ %s: %v", provider, err)
		status := http.StatusOK
		if helpers.StatusFor(err) == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		h.render.JSON(w, status, map[string]any{"provider": provider, "ok": false, "error": err.Error()})
		return
	}
	log.Printf("AdminHandler.providerHealth: ✅ %s credentials accepted", provider)
	h.render.JSON(w, http.StatusOK, map[string]any{"provider": provider, "ok": true})
}

func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.newsletter.List(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ListSubscribers", err)
		return
	}
	if subs == nil {
		subs = []models.NewsletterSubscriber{}
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"subscribers": subs, "count": len(subs)})
}

func (h *AdminHandler) ClearSubscribers(w http.ResponseWriter, r *http.Request) {
	n, err := h.newsletter.Clear(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.ClearSubscribers", err)
		return
	}
	log.Printf("AdminHandler.ClearSubscribers: removed %d subscribers", n)
	h.render.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type newsletterSendRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	HTML    string `json:"html" validate:"required"`
}

func (h *AdminHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterSendRequest
	if !h.bind(w, r, "AdminHandler.SendNewsletter", &req) {
		return
	}
	res, err := h.newsletter.Send(r.Context(), req.Subject, req.HTML)
	if err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.SendNewsletter", err)
		return
	}
	if res == nil {
		res = &services.SendResult{}
	}
	h.render.JSON(w, http.StatusOK, res)
}
