package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

type ReviewInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	UserID    string  `json:"user_id" validate:"required"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   string  `json:"comment" validate:"required,max=2000"`
	OrderID   *string `json:"order_id"`
}

type ProductReviews struct {
	Reviews []models.Review `json:"reviews"`
	Average float64         `json:"average"`
	Count   int             `json:"count"`
}

type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
}

func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository, orders repositories.OrderRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, orders: orders}
}

func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if in.OrderID != nil && *in.OrderID != "" {
		order, err := s.orders.GetByID(ctx, *in.OrderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if order.UserID != in.UserID {
			return nil, fmt.Errorf("%w: order belongs to another customer", ErrForbidden)
		}
		if !orderContains(order, product.ID) {
			return nil, fmt.Errorf("%w: product is not part of this order", ErrInvalidInput)
		}
	} else {
		in.OrderID = nil
	}

	review := &models.Review{
		ProductID: product.ID,
		UserID:    in.UserID,
		OrderID:   in.OrderID,
		Rating:    in.Rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return review, nil
}

func orderContains(order *models.Order, productID string) bool {
	for _, it := range order.OrderItems {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string) (*ProductReviews, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	out := &ProductReviews{Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		out.Average = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return out, nil
}
