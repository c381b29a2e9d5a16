package helpers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/unrolled/render"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrEmptyCart, http.StatusBadRequest},
	{services.ErrPromoInvalid, http.StatusBadRequest},
	{services.ErrTotalMismatch, http.StatusBadRequest},
	{services.ErrUnsupportedProvider, http.StatusBadRequest},
	{services.ErrInvalidSignature, http.StatusUnauthorized},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrPaymentNotVerified, http.StatusPaymentRequired},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrOrderNotFound, http.StatusNotFound},
	{services.ErrProductNotFound, http.StatusNotFound},
	{services.ErrDriverNotFound, http.StatusNotFound},
	{services.ErrDeliveryNotFound, http.StatusNotFound},
	{services.ErrPromoNotFound, http.StatusNotFound},
	{services.ErrInsufficientStock, http.StatusConflict},
	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrOrderAlreadyPaid, http.StatusConflict},
	{services.ErrOrderNotPaid, http.StatusConflict},
	{services.ErrPaymentProvider, http.StatusBadGateway},
}

// StatusFor maps a service error onto an HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func JSONError(rnd *render.Render, w http.ResponseWriter, status int, msg string) {
	rnd.JSON(w, status, ErrorResponse{Error: msg})
}

// WriteError renders err with its mapped status. Internal errors are logged
// and hidden from the client.
func WriteError(rnd *render.Render, w http.ResponseWriter, where string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s: %v", where, err)
		JSONError(rnd, w, status, "internal server error")
		return
	}
	if status == http.StatusBadGateway {
		log.Printf("%s: %v", where, err)
	}
	JSONError(rnd, w, status, err.Error())
}

// WriteValidation renders validator errors as a 400 with a field map.
func WriteValidation(rnd *render.Render, w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		rnd.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: FormatValidationErrors(verrs)})
		return
	}
	JSONError(rnd, w, http.StatusBadRequest, err.Error())
}
