package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/unrolled/render"
)

const (
	featuredOnHome = 8
	healthTimeout  = 3 * time.Second
)

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HomeHandler struct {
	render   *render.Render
	products ProductReader
	checks   map[string]HealthCheck
}

func NewHomeHandler(r *render.Render, p ProductReader, checks map[string]HealthCheck) *HomeHandler {
	return &HomeHandler{
		render:   r,
		products: p,
		checks:   checks,
	}
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured := true
	page, err := h.products.List(r.Context(), "", &featured, "", 1, featuredOnHome)
	if err != nil {
		log.Printf("HomeHandler.Home: featured products: %v", err)
		h.render.JSON(w, http.StatusOK, map[string]any{"name": "TKB Glow API", "featured": []any{}})
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"name": "TKB Glow API", "featured": page.Products})
}

func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Printf("HomeHandler.Health: ❌ %s: %v", name, err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	h.render.JSON(w, status, map[string]any{"status": overall, "checks": results})
}
