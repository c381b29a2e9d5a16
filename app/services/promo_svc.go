package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
	"gorm.io/gorm"
)

type PromoInput struct {
	Code            string          `json:"code" validate:"required,min=3,max=50"`
	Description     string          `json:"description"`
	DiscountType    string          `json:"discount_type" validate:"required,oneof=percent fixed"`
	Value           decimal.Decimal `json:"value"`
	ApplyToDelivery bool            `json:"apply_to_delivery"`
	MinSubtotal     decimal.Decimal `json:"min_subtotal"`
	MaxUses         *int            `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	Active          *bool           `json:"active"`
}

// PromoUpdate carries a partial update; nil fields are left alone.
type PromoUpdate struct {
	Description     *string          `json:"description"`
	DiscountType    *string          `json:"discount_type" validate:"omitempty,oneof=percent fixed"`
	Value           *decimal.Decimal `json:"value"`
	ApplyToDelivery *bool            `json:"apply_to_delivery"`
	MinSubtotal     *decimal.Decimal `json:"min_subtotal"`
	MaxUses         *int             `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt       *time.Time       `json:"expires_at"`
	Active          *bool            `json:"active"`
}

type PromoService struct {
	repo repositories.PromoRepository
	now  func() time.Time
}

func NewPromoService(repo repositories.PromoRepository) *PromoService {
	return &PromoService{repo: repo, now: time.Now}
}

// Validate returns the promo when code may be applied to subtotal. Every
// rejection wraps ErrPromoInvalid or ErrPromoNotFound with a shopper-facing reason.
func (s *PromoService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promo, error) {
	code = models.NormalizePromoCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: enter a promo code", ErrPromoInvalid)
	}

	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load promo: %w", err)
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}

	switch {
	case !promo.Active:
		return nil, fmt.Errorf("%w: this code is no longer active", ErrPromoInvalid)
	case promo.Expired(s.now()):
		return nil, fmt.Errorf("%w: this code has expired", ErrPromoInvalid)
	case subtotal.LessThan(promo.MinSubtotal):
		return nil, fmt.Errorf("%w: spend at least %s to use this code", ErrPromoInvalid, promo.MinSubtotal.StringFixed(2))
	case promo.Exhausted():
		return nil, fmt.Errorf("%w: this code has reached its usage limit", ErrPromoInvalid)
	}
	return promo, nil
}

// Redeem records one use of code for orderID inside tx. Repeating it for the
// same order does nothing.
func (s *PromoService) Redeem(ctx context.Context, tx *gorm.DB, code, orderID, userID string, amount decimal.Decimal) error {
	code = models.NormalizePromoCode(code)
	if code == "" {
		return nil
	}

	exists, err := s.repo.RedemptionExists(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("failed to check promo redemption: %w", err)
	}
	if exists {
		return nil
	}

	ok, err := s.repo.IncrementUsage(ctx, tx, code)
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: this code has reached its usage limit", ErrPromoInvalid)
	}

	redemption := &models.PromoRedemption{
		PromoCode: code,
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
	}
	if err := s.repo.CreateRedemption(ctx, tx, redemption); err != nil {
		return fmt.Errorf("failed to record promo redemption: %w", err)
	}
	log.Printf("PromoService.Redeem: %s redeemed for order %s", code, orderID)
	return nil
}

func (s *PromoService) List(ctx context.Context) ([]models.Promo, error) {
	return s.repo.List(ctx)
}

func checkPromoTerms(discountType string, value, minSubtotal decimal.Decimal) error {
	switch {
	case discountType != models.DiscountPercent && discountType != models.DiscountFixed:
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidInput, discountType)
	case value.LessThanOrEqual(decimal.Zero):
		return fmt.Errorf("%w: value must be positive", ErrInvalidInput)
	case discountType == models.DiscountPercent && value.GreaterThan(decimal.NewFromInt(100)):
		return fmt.Errorf("%w: percent value must be at most 100", ErrInvalidInput)
	case minSubtotal.IsNegative():
		return fmt.Errorf("%w: min_subtotal must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *PromoService) Create(ctx context.Context, in PromoInput) (*models.Promo, error) {
	if err := checkPromoTerms(in.DiscountType, in.Value, in.MinSubtotal); err != nil {
		return nil, err
	}

	code := models.NormalizePromoCode(in.Code)
	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: promo code %s already exists", ErrInvalidInput, code)
	}

	promo := &models.Promo{
		Code:            code,
		Description:     in.Description,
		DiscountType:    in.DiscountType,
		Value:           in.Value,
		ApplyToDelivery: in.ApplyToDelivery,
		MinSubtotal:     in.MinSubtotal,
		MaxUses:         in.MaxUses,
		ExpiresAt:       in.ExpiresAt,
		Active:          in.Active == nil || *in.Active,
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promo: %w", err)
	}
	return promo, nil
}

// Update applies a partial change. The merged promo must pass the same checks
// as a new one.
func (s *PromoService) Update(ctx context.Context, code string, in PromoUpdate) (*models.Promo, error) {
	code = models.NormalizePromoCode(code)
	current, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrPromoNotFound
	}

	discountType, value, minSubtotal := current.DiscountType, current.Value, current.MinSubtotal
	fields := map[string]interface{}{}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.DiscountType != nil {
		discountType = *in.DiscountType
		fields["discount_type"] = discountType
	}
	if in.Value != nil {
		value = *in.Value
		fields["value"] = value
	}
	if in.ApplyToDelivery != nil {
		fields["apply_to_delivery"] = *in.ApplyToDelivery
	}
	if in.MinSubtotal != nil {
		minSubtotal = *in.MinSubtotal
		fields["min_subtotal"] = minSubtotal
	}
	if in.MaxUses != nil {
		fields["max_uses"] = *in.MaxUses
	}
	if in.ExpiresAt != nil {
		fields["expires_at"] = *in.ExpiresAt
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if err := checkPromoTerms(discountType, value, minSubtotal); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, code, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to update promo: %w", err)
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *PromoService) Delete(ctx context.Context, code string) error {
	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	return s.repo.Delete(ctx, code)
}
