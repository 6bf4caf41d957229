package service

import (
	"context"
	"errors"
	"fmt"

	"shophub/internal/ai"
	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/samber/lo"
)

type ReviewService struct {
	reviews   repository.ReviewRepository
	catalog   *CatalogService
	assistant *ai.Assistant
}

func NewReviewService(reviews repository.ReviewRepository, catalog *CatalogService, assistant *ai.Assistant) *ReviewService {
	return &ReviewService{reviews: reviews, catalog: catalog, assistant: assistant}
}

// List returns a product's reviews, newest first.
func (s *ReviewService) List(ctx context.Context, productRef string) ([]*domain.ReviewWithUser, error) {
	product, err := s.catalog.GetProduct(ctx, productRef)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListProductReviews(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Create records actor's review of an existing product.
func (s *ReviewService) Create(ctx context.Context, actor *domain.User, productID string, rating int, comment *string) (*domain.Review, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, invalid("rating", "must be between 1 and 5")
	}
	if _, err := s.catalog.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	review, err := s.reviews.CreateReview(ctx, domain.Review{
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// Summary condenses a product's reviews into a short paragraph with pros and cons.
func (s *ReviewService) Summary(ctx context.Context, productRef string) (ai.ReviewSummary, error) {
	reviews, err := s.List(ctx, productRef)
	if err != nil {
		return ai.ReviewSummary{}, err
	}

	plain := lo.Map(reviews, func(r *domain.ReviewWithUser, _ int) domain.Review {
		return r.Review
	})
	return s.assistant.SummarizeReviews(ctx, plain), nil
}
