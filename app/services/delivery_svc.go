package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/cache"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

const (
	DeliverySourceCity    = "city"
	DeliverySourceState   = "state"
	DeliverySourceDefault = "default"
	DeliverySourceMissing = "missing"
)

type DeliveryQuote struct {
	Charge decimal.Decimal        `json:"charge"`
	Source string                 `json:"source"`
	Row    *models.DeliveryCharge `json:"row,omitempty"`
}

type DeliveryChargeInput struct {
	State       string          `json:"state" validate:"required,max=100"`
	City        string          `json:"city" validate:"max=100"`
	Charge      decimal.Decimal `json:"charge"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Notes       string          `json:"notes"`
	Active      *bool           `json:"active"`
}

type DeliveryService struct {
	repo          repositories.DeliveryChargeRepository
	cache         cache.Cache
	defaultCharge decimal.Decimal
}

func NewDeliveryService(repo repositories.DeliveryChargeRepository, c cache.Cache, defaultCharge decimal.Decimal) *DeliveryService {
	return &DeliveryService{repo: repo, cache: c, defaultCharge: defaultCharge}
}

func normalizePlace(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve picks the delivery charge for a destination. A city row beats a
// state-wide row, and within each kind the highest min_subtotal tier the
// subtotal qualifies for wins.
func (s *DeliveryService) Resolve(ctx context.Context, state, city string, subtotal decimal.Decimal) (*DeliveryQuote, error) {
	state, city = normalizePlace(state), normalizePlace(city)
	if state == "" || city == "" {
		return &DeliveryQuote{Charge: decimal.Zero, Source: DeliverySourceMissing}, nil
	}

	key := fmt.Sprintf(cache.KeyDelivery, state, city, subtotal.StringFixed(2))
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("DeliveryService.Resolve: cache get %s: %v", key, err)
	} else if ok {
		var q DeliveryQuote
		if err := json.Unmarshal([]byte(raw), &q); err == nil {
			return &q, nil
		}
	}

	rows, err := s.repo.ListActiveByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery charges: %w", err)
	}

	q := pickDeliveryCharge(rows, city, subtotal)
	if q == nil {
		q = &DeliveryQuote{Charge: s.defaultCharge, Source: DeliverySourceDefault}
	}

	if b, err := json.Marshal(q); err == nil {
		if err := s.cache.Set(ctx, key, string(b), cache.TTLDelivery); err != nil {
			log.Printf("DeliveryService.Resolve: cache set %s: %v", key, err)
		}
	}
	return q, nil
}

func pickDeliveryCharge(rows []models.DeliveryCharge, city string, subtotal decimal.Decimal) *DeliveryQuote {
	var bestCity, bestState *models.DeliveryCharge
	for i := range rows {
		row := &rows[i]
		if !row.Active || row.MinSubtotal.GreaterThan(subtotal) {
			continue
		}
		switch {
		case row.StateWide():
			if bestState == nil || row.MinSubtotal.GreaterThan(bestState.MinSubtotal) {
				bestState = row
			}
		case normalizePlace(row.City) == city:
			if bestCity == nil || row.MinSubtotal.GreaterThan(bestCity.MinSubtotal) {
				bestCity = row
			}
		}
	}

	if bestCity != nil {
		return &DeliveryQuote{Charge: bestCity.Charge, Source: DeliverySourceCity, Row: bestCity}
	}
	if bestState != nil {
		return &DeliveryQuote{Charge: bestState.Charge, Source: DeliverySourceState, Row: bestState}
	}
	return nil
}

func (s *DeliveryService) List(ctx context.Context) ([]models.DeliveryCharge, error) {
	return s.repo.List(ctx)
}

func (s *DeliveryService) Create(ctx context.Context, in DeliveryChargeInput) (*models.DeliveryCharge, error) {
	if err := validateDeliveryInput(in); err != nil {
		return nil, err
	}
	row := &models.DeliveryCharge{
		State:       strings.TrimSpace(in.State),
		City:        strings.TrimSpace(in.City),
		Charge:      in.Charge,
		MinSubtotal: in.MinSubtotal,
		Notes:       in.Notes,
		Active:      in.Active == nil || *in.Active,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to create delivery charge: %w", err)
	}
	s.invalidate(ctx)
	return row, nil
}

func (s *DeliveryService) Update(ctx context.Context, id string, in DeliveryChargeInput) (*models.DeliveryCharge, error) {
	if err := validateDeliveryInput(in); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrDeliveryNotFound
	}

	row.State = strings.TrimSpace(in.State)
	row.City = strings.TrimSpace(in.City)
	row.Charge = in.Charge
	row.MinSubtotal = in.MinSubtotal
	row.Notes = in.Notes
	if in.Active != nil {
		row.Active = *in.Active
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to update delivery charge: %w", err)
	}
	s.invalidate(ctx)
	return row, nil
}

func (s *DeliveryService) Delete(ctx context.Context, id string) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrDeliveryNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete delivery charge: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DeliveryService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cache.KeyDeliveryPrefix); err != nil {
		log.Printf("DeliveryService.invalidate: %v", err)
	}
}

func validateDeliveryInput(in DeliveryChargeInput) error {
	if strings.TrimSpace(in.State) == "" {
		return fmt.Errorf("%w: state is required", ErrInvalidInput)
	}
	if in.Charge.IsNegative() || in.MinSubtotal.IsNegative() {
		return fmt.Errorf("%w: charge and min_subtotal must not be negative", ErrInvalidInput)
	}
	return nil
}
