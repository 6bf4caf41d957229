package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
)

type reviewRepository struct {
	db *sql.DB
}

// CreateReview inserts a new review
func (r *reviewRepository) CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	review.ID = uuid.NewString()
	review.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return &review, nil
}

// ListProductReviews retrieves a product's reviews with their authors, newest first
func (r *reviewRepository) ListProductReviews(ctx context.Context, productID string) ([]*domain.ReviewWithUser, error) {
	query := `
		SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.created_at,
		       u.id, u.email, u.name, u.role, u.firebase_uid, u.shop_name, u.shop_logo, u.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.ReviewWithUser{}
	for rows.Next() {
		review := &domain.ReviewWithUser{User: &domain.User{}}
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.UserID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.User.ID,
			&review.User.Email,
			&review.User.Name,
			&review.User.Role,
			&review.User.FirebaseUID,
			&review.User.ShopName,
			&review.User.ShopLogo,
			&review.User.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}
