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

const categoryColumns = `id, name, slug, image, description, created_at`

type categoryRepository struct {
	db *sql.DB
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Image,
		&category.Description,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// CreateCategory inserts a new category using parameterized queries
func (r *categoryRepository) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Slug,
		category.Image,
		category.Description,
		category.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &category, nil
}

// ListCategories retrieves all categories
func (r *categoryRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategoryByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getCategory(ctx, "id", id)
}

// GetCategoryBySlug retrieves a category by slug using parameterized queries
func (r *categoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.getCategory(ctx, "slug", slug)
}

func (r *categoryRepository) getCategory(ctx context.Context, column, value string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + column + ` = $1`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by %s: %w", column, err)
	}

	return category, nil
}
