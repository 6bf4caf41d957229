package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
)

const cartItemColumns = `id, user_id, product_id, quantity, created_at`

type cartRepository struct {
	db *sql.DB
}

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AddToCart inserts a cart line, or increases the quantity of the existing
// line for the same user and product.
func (r *cartRepository) AddToCart(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (` + cartItemColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING ` + cartItemColumns

	added, err := scanCartItem(r.db.QueryRowContext(
		ctx,
		query,
		uuid.NewString(),
		item.UserID,
		item.ProductID,
		item.Quantity,
		time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return added, nil
}

// GetCartItem retrieves a single cart line by ID
func (r *cartRepository) GetCartItem(ctx context.Context, id string) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// UpdateCartItem replaces the quantity of a cart line
func (r *cartRepository) UpdateCartItem(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	query := `UPDATE cart_items SET quantity = $2 WHERE id = $1 RETURNING ` + cartItemColumns

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, id, quantity))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return item, nil
}

// RemoveFromCart deletes a cart line
func (r *cartRepository) RemoveFromCart(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ClearCart deletes every cart line belonging to the user
func (r *cartRepository) ClearCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ListCartItems retrieves the user's cart lines with their products, newest first
func (r *cartRepository) ListCartItems(ctx context.Context, userID string) ([]*domain.CartItemWithProduct, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		       p.id, p.seller_id, p.category_id, p.name, p.slug, p.short_description, p.long_description,
		       p.price, p.compare_at_price, p.images, p.stock, p.is_ai_generated, p.is_featured, p.status,
		       p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItemWithProduct{}
	for rows.Next() {
		item := &domain.CartItemWithProduct{Product: &domain.Product{}}
		dest := []interface{}{&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt}
		dest = append(dest, productFields(item.Product)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
