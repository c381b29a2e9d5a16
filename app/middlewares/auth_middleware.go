package middlewares

import (
	"log"
	"net/http"
	"strings"

	"github.com/tkbglow/glow-api/app/helpers"
	"github.com/tkbglow/glow-api/app/services"
)

type TokenParser interface {
	ParseCustomerToken(raw string) (*services.CustomerClaims, error)
}

// CustomerAuth reads an optional bearer token. A present but invalid token
// is rejected; a missing one leaves the request anonymous.
func CustomerAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				helpers.JSONError(rnd, w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := parser.ParseCustomerToken(strings.TrimSpace(raw))
			if err != nil {
				log.Printf("CustomerAuth: rejected token: %v", err)
				helpers.JSONError(rnd, w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := helpers.WithCustomer(r.Context(), claims.Subject, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer rejects requests that carry neither a customer token nor admin credentials.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, isCustomer := helpers.CustomerFromContext(r.Context())
		_, isAdmin := helpers.AdminFromContext(r.Context())
		if !isCustomer && !isAdmin {
			helpers.JSONError(rnd, w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
