package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
)

const productColumns = `id, seller_id, category_id, name, slug, short_description, long_description,
	price, compare_at_price, images, stock, is_ai_generated, is_featured, status, created_at, updated_at`

// productDetailsQuery joins every product with its seller, category and review
// aggregate in a single statement so listings never fan out per row.
const productDetailsQuery = `
	SELECT p.id, p.seller_id, p.category_id, p.name, p.slug, p.short_description, p.long_description,
	       p.price, p.compare_at_price, p.images, p.stock, p.is_ai_generated, p.is_featured, p.status,
	       p.created_at, p.updated_at,
	       u.id, u.email, u.name, u.role, u.firebase_uid, u.shop_name, u.shop_logo, u.created_at,
	       c.id, c.name, c.slug, c.image, c.description, c.created_at,
	       COALESCE(r.review_count, 0), r.average_rating
	FROM products p
	JOIN users u ON u.id = p.seller_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN (
		SELECT product_id, COUNT(*) AS review_count, AVG(rating)::float8 AS average_rating
		FROM reviews
		GROUP BY product_id
	) r ON r.product_id = p.id
`

type productRepository struct {
	db *sql.DB
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(productFields(product)...)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func productFields(p *domain.Product) []interface{} {
	return []interface{}{
		&p.ID,
		&p.SellerID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.ShortDescription,
		&p.LongDescription,
		&p.Price,
		&p.CompareAtPrice,
		&p.Images,
		&p.Stock,
		&p.IsAIGenerated,
		&p.IsFeatured,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanProductDetails(row rowScanner) (*domain.ProductWithDetails, error) {
	details := &domain.ProductWithDetails{}
	seller := &domain.User{}

	var (
		categoryID, categoryName, categorySlug sql.NullString
		categoryImage, categoryDescription     sql.NullString
		categoryCreatedAt                      sql.NullTime
		averageRating                          sql.NullFloat64
	)

	dest := productFields(&details.Product)
	dest = append(dest,
		&seller.ID,
		&seller.Email,
		&seller.Name,
		&seller.Role,
		&seller.FirebaseUID,
		&seller.ShopName,
		&seller.ShopLogo,
		&seller.CreatedAt,
		&categoryID,
		&categoryName,
		&categorySlug,
		&categoryImage,
		&categoryDescription,
		&categoryCreatedAt,
		&details.ReviewCount,
		&averageRating,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	details.Seller = seller
	if categoryID.Valid {
		details.Category = &domain.Category{
			ID:          categoryID.String,
			Name:        categoryName.String,
			Slug:        categorySlug.String,
			Image:       nullableString(categoryImage),
			Description: nullableString(categoryDescription),
			CreatedAt:   categoryCreatedAt.Time,
		}
	}
	if averageRating.Valid && details.ReviewCount > 0 {
		avg := averageRating.Float64
		details.AverageRating = &avg
	}

	return details, nil
}

// CreateProduct inserts a new product using parameterized queries
func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}
	if product.Images == nil {
		product.Images = domain.StringList{}
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.SellerID,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.ShortDescription,
		product.LongDescription,
		product.Price,
		product.CompareAtPrice,
		product.Images,
		product.Stock,
		product.IsAIGenerated,
		product.IsFeatured,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return nil, ErrProductSlugTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// UpdateProduct merges the patch into the stored product and refreshes updated_at
func (r *productRepository) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := []interface{}{id, time.Now().UTC()}
	sets := []string{"updated_at = $2"}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.ShortDescription != nil {
		add("short_description", *patch.ShortDescription)
	}
	if patch.LongDescription != nil {
		add("long_description", *patch.LongDescription)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.CompareAtPrice != nil {
		add("compare_at_price", *patch.CompareAtPrice)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Images != nil {
		add("images", domain.StringList(*patch.Images))
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.IsAIGenerated != nil {
		add("is_ai_generated", *patch.IsAIGenerated)
	}
	if patch.IsFeatured != nil {
		add("is_featured", *patch.IsFeatured)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1 RETURNING %s`, strings.Join(sets, ", "), productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product; cart, wishlist and review rows cascade
func (r *productRepository) DeleteProduct(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetProductByID retrieves a product with its details by ID
func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.ProductWithDetails, error) {
	return r.getProduct(ctx, "p.id", id)
}

// GetProductBySlug retrieves a product with its details by slug
func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.ProductWithDetails, error) {
	return r.getProduct(ctx, "p.slug", slug)
}

func (r *productRepository) getProduct(ctx context.Context, column, value string) (*domain.ProductWithDetails, error) {
	query := productDetailsQuery + ` WHERE ` + column + ` = $1`

	product, err := scanProductDetails(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by %s: %w", column, err)
	}

	return product, nil
}

// ListProducts retrieves products matching the filter, newest first
func (r *productRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductWithDetails, error) {
	conditions := []string{}
	args := []interface{}{}

	where := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CategoryID != "" {
		where("p.category_id", filter.CategoryID)
	}
	if filter.SellerID != "" {
		where("p.seller_id", filter.SellerID)
	}
	if filter.Featured != nil {
		where("p.is_featured", *filter.Featured)
	}
	if filter.Status != "" {
		where("p.status", filter.Status)
	}

	query := productDetailsQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	return r.queryProducts(ctx, query, args...)
}

// listProductsByID retrieves the details of every listed product in one query.
func (r *productRepository) listProductsByID(ctx context.Context, ids []string) ([]*domain.ProductWithDetails, error) {
	return r.queryProducts(ctx, productDetailsQuery+" WHERE p.id = ANY($1)", ids)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.ProductWithDetails, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductWithDetails{}
	for rows.Next() {
		product, err := scanProductDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
