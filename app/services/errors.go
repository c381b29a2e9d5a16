package services

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDeliveryNotFound    = errors.New("delivery charge not found")
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoInvalid        = errors.New("promo code is not valid")
	ErrInsufficientStock   = errors.New("insufficient product stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	ErrTotalMismatch       = errors.New("order total changed, please review your cart")
	ErrInvalidTransition   = errors.New("order status transition not allowed")
	ErrPaymentProvider     = errors.New("payment provider request failed")
	ErrPaymentNotVerified  = errors.New("payment could not be verified")
	ErrOrderNotPaid        = errors.New("order has not been paid")
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
