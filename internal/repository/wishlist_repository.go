package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type wishlistRepository struct {
	db       *sql.DB
	products *productRepository
}

// AddToWishlist inserts a wishlist entry, returning the existing one when the
// product is already on the user's wishlist.
func (r *wishlistRepository) AddToWishlist(ctx context.Context, item domain.WishlistItem) (*domain.WishlistItem, error) {
	query := `
		INSERT INTO wishlist_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET product_id = EXCLUDED.product_id
		RETURNING id, user_id, product_id, created_at
	`

	added := &domain.WishlistItem{}
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), item.UserID, item.ProductID, time.Now().UTC()).Scan(
		&added.ID,
		&added.UserID,
		&added.ProductID,
		&added.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return added, nil
}

// RemoveFromWishlist deletes a wishlist entry
func (r *wishlistRepository) RemoveFromWishlist(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListWishlistItems retrieves the user's wishlist entries with product details, newest first
func (r *wishlistRepository) ListWishlistItems(ctx context.Context, userID string) ([]*domain.WishlistItemWithProduct, error) {
	query := `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []*domain.WishlistItemWithProduct{}
	for rows.Next() {
		item := &domain.WishlistItemWithProduct{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	// One joined query for every wished product instead of one per entry.
	ids := lo.Uniq(lo.Map(items, func(item *domain.WishlistItemWithProduct, _ int) string { return item.ProductID }))
	details, err := r.products.listProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(details, func(p *domain.ProductWithDetails) string { return p.ID })
	for _, item := range items {
		item.Product = byID[item.ProductID]
	}

	return items, nil
}
