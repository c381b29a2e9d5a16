package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

const maxPageSize = 100

type ProductInput struct {
	Title         string           `json:"title" validate:"required,min=2,max=255"`
	Slug          string           `json:"slug" validate:"omitempty,max=255"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Images        []string         `json:"images" validate:"omitempty,dive,url"`
	Stock         int              `json:"stock" validate:"min=0"`
	Category      string           `json:"category" validate:"max=100"`
	Featured      bool             `json:"featured"`
	Benefits      string           `json:"benefits"`
	ShortDesc     string           `json:"short_desc"`
	Description   string           `json:"description"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type ProductService struct {
	repo repositories.ProductRepository
}

func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) List(ctx context.Context, category string, featured *bool, q string, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 24
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	products, total, err := s.repo.List(ctx, repositories.ProductFilter{
		Category: category,
		Featured: featured,
		Query:    q,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{Products: products, Total: total, Page: page, Limit: limit}, nil
}

// Get looks the product up by id first and by slug second.
func (s *ProductService) Get(ctx context.Context, idOrSlug string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p, err = s.repo.GetBySlug(ctx, idOrSlug)
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p := &models.Product{}
	applyProductInput(p, in)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	applyProductInput(p, in)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(ctx, id)
}

func validateProductInput(in ProductInput) error {
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if in.OriginalPrice != nil && in.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: original_price must not be negative", ErrInvalidInput)
	}
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Title = strings.TrimSpace(in.Title)
	if in.Slug != "" {
		p.Slug = slug.Make(in.Slug)
	}
	p.Price = in.Price
	p.OriginalPrice = in.OriginalPrice
	p.Images = in.Images
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Stock = in.Stock
	p.Category = strings.TrimSpace(in.Category)
	p.Featured = in.Featured
	p.Benefits = in.Benefits
	p.ShortDesc = in.ShortDesc
	p.Description = in.Description
}
