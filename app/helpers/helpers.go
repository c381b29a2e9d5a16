package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tkbglow/glow-api/app/services"
)

type contextKey string

const (
	ContextKeyUserID  contextKey = "userID"
	ContextKeyEmail   contextKey = "userEmail"
	ContextKeyAdminID contextKey = "adminID"
)

const maxBodyBytes = 1 << 20

func WithCustomer(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyEmail, email)
}

// CustomerFromContext returns the bearer-token user set by the auth middleware.
func CustomerFromContext(ctx context.Context) (userID, email string, ok bool) {
	userID, _ = ctx.Value(ContextKeyUserID).(string)
	email, _ = ctx.Value(ContextKeyEmail).(string)
	return userID, email, userID != ""
}

func WithAdmin(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminID, adminID)
}

func AdminFromContext(ctx context.Context) (string, bool) {
	adminID, _ := ctx.Value(ContextKeyAdminID).(string)
	return adminID, adminID != ""
}

// DecodeJSON reads a JSON body of at most 1 MiB into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", services.ErrInvalidInput)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", services.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", err.Field())
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", err.Field())
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be a number.", err.Field())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", err.Field(), err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", err.Field(), err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%s must be one of: %s.", err.Field(), err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", err.Field(), err.Tag())
		}
	}
	return errorMessages
}

// QueryInt parses an integer query parameter, returning def when absent or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// QueryBool returns nil when the parameter is absent so callers can tell
// "not filtered" from false.
func QueryBool(r *http.Request, key string) *bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
