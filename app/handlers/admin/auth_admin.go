package admin

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/tkbglow/glow-api/app/helpers"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.bind(w, r, "AdminHandler.Login", &req) {
		return
	}

	user, err := h.auth.AdminLogin(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		log.Printf("AdminHandler.Login: failed login for %s: %v", req.Email, err)
		helpers.WriteError(h.render, w, "AdminHandler.Login", err)
		return
	}

	if err := h.sessions.SetAdmin(w, r, user.ID, user.Role); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.Login", err)
		return
	}

	log.Printf("AdminHandler.Login: ✅ admin %s signed in", user.Email)
	h.render.JSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"csrf_token": csrf.Token(r),
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearSession(w, r); err != nil {
		helpers.WriteError(h.render, w, "AdminHandler.Logout", err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CSRFToken hands the session's token to the dashboard, which echoes it in
// the X-CSRF-Token header on unsafe requests.
func (h *AdminHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set("X-CSRF-Token", token)
	h.render.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}
