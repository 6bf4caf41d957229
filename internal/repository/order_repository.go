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

const orderColumns = `id, user_id, status, total_amount, payment_reference, payment_status,
	payment_method, shipping_address, items, created_at, updated_at`

type orderRepository struct {
	db *sql.DB
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.PaymentReference,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.ShippingAddress,
		&order.Items,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder inserts a new order with its item snapshot
func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.Items == nil {
		order.Items = domain.OrderItems{}
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.Status,
		order.TotalAmount,
		order.PaymentReference,
		order.PaymentStatus,
		order.PaymentMethod,
		order.ShippingAddress,
		order.Items,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &order, nil
}

// GetOrderByID retrieves an order by ID
func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by id: %w", err)
	}

	return order, nil
}

// ListOrders retrieves a user's orders newest first, or every order when userID is empty
func (r *orderRepository) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus sets the fulfilment status of an order
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, status, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

// UpdateOrderPayment records a payment outcome and the resulting status together
func (r *orderRepository) UpdateOrderPayment(ctx context.Context, id string, payment domain.OrderPayment) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET payment_reference = $2, payment_status = $3, status = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(
		ctx,
		query,
		id,
		payment.Reference,
		payment.PaymentStatus,
		payment.Status,
		time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}

	return order, nil
}
