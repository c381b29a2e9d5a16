package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

type DriverInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required,min=7,max=20"`
	WhatsApp string `json:"whatsapp" validate:"omitempty,max=20"`
	Vehicle  string `json:"vehicle" validate:"max=100"`
	Active   *bool  `json:"active"`
}

type DriverService struct {
	repo repositories.DriverRepository
}

func NewDriverService(repo repositories.DriverRepository) *DriverService {
	return &DriverService{repo: repo}
}

func (s *DriverService) List(ctx context.Context) ([]models.Driver, error) {
	return s.repo.List(ctx)
}

func (s *DriverService) Create(ctx context.Context, in DriverInput) (*models.Driver, error) {
	d := &models.Driver{
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
		WhatsApp: strings.TrimSpace(in.WhatsApp),
		Vehicle:  strings.TrimSpace(in.Vehicle),
		Active:   in.Active == nil || *in.Active,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return d, nil
}

func (s *DriverService) Update(ctx context.Context, id string, in DriverInput) (*models.Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDriverNotFound
	}
	d.FullName = strings.TrimSpace(in.FullName)
	d.Phone = strings.TrimSpace(in.Phone)
	d.WhatsApp = strings.TrimSpace(in.WhatsApp)
	d.Vehicle = strings.TrimSpace(in.Vehicle)
	if in.Active != nil {
		d.Active = *in.Active
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update driver: %w", err)
	}
	return d, nil
}

func (s *DriverService) Delete(ctx context.Context, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDriverNotFound
	}
	return s.repo.Delete(ctx, id)
}
