package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shophub/internal/ai"
	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const slugAttempts = 3

// CatalogService owns products, categories and the AI-assisted discovery
// features built on them.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	assistant  *ai.Assistant
	logger     *zap.Logger
}

func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	assistant *ai.Assistant,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		assistant:  assistant,
		logger:     logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductWithDetails, error) {
	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Featured(ctx context.Context) ([]*domain.ProductWithDetails, error) {
	return s.ListProducts(ctx, domain.ProductFilter{Featured: lo.ToPtr(true)})
}

// GetProduct resolves a product by slug, falling back to its ID.
func (s *CatalogService) GetProduct(ctx context.Context, ref string) (*domain.ProductWithDetails, error) {
	product, err := s.products.GetProductBySlug(ctx, ref)
	if errors.Is(err, repository.ErrProductNotFound) {
		product, err = s.products.GetProductByID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct lists a new product for actor. The seller is always the
// caller and the slug is derived from the name.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, product domain.Product) (*domain.Product, error) {
	if actor == nil || (actor.Role != domain.RoleSeller && actor.Role != domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	product.CategoryID = blankToNil(product.CategoryID)
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if product.Status != "" && !product.Status.Valid() {
		return nil, invalid("status", "must be one of active, draft, archived")
	}

	product.ID = ""
	product.SellerID = actor.ID

	var lastErr error
	for i := 0; i < slugAttempts; i++ {
		product.Slug = domain.UniqueSlug(product.Name)
		created, err := s.products.CreateProduct(ctx, product)
		if err == nil {
			s.logger.Info("Product created",
				zap.String("product_id", created.ID),
				zap.String("seller_id", created.SellerID),
			)
			return created, nil
		}
		if !errors.Is(err, repository.ErrProductSlugTaken) {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create product: %w", lastErr)
}

// UpdateProduct applies patch when actor owns the product or is an admin.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if _, err := s.ownedProduct(ctx, actor, id); err != nil {
		return nil, err
	}
	patch.CategoryID = blankToNil(patch.CategoryID)
	if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("status", "must be one of active, draft, archived")
	}

	product, err := s.products.UpdateProduct(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product when actor owns it or is an admin.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.ownedProduct(ctx, actor, id); err != nil {
		return err
	}

	deleted, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return repository.ErrProductNotFound
	}

	s.logger.Info("Product deleted", zap.String("product_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *CatalogService) ownedProduct(ctx context.Context, actor *domain.User, id string) (*domain.ProductWithDetails, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return product, nil
}

// blankToNil treats an empty category reference as no category.
func blankToNil(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func (s *CatalogService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.GetCategoryByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return invalid("categoryId", "category does not exist")
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory resolves a category by slug, falling back to its ID.
func (s *CatalogService) GetCategory(ctx context.Context, ref string) (*domain.Category, error) {
	category, err := s.categories.GetCategoryBySlug(ctx, ref)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		category, err = s.categories.GetCategoryByID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// CreateCategory adds a category. An empty slug is derived from the name.
func (s *CatalogService) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Slug == "" {
		category.Slug = domain.Slugify(category.Name)
	}
	if category.Slug == "" {
		return nil, invalid("name", "must contain letters or digits")
	}

	created, err := s.categories.CreateCategory(ctx, category)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, invalid("name", err.Error())
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return created, nil
}

// Search ranks every listed product against a free-text query.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*domain.ProductWithDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("q", "query required")
	}

	candidates, err := s.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return s.assistant.Search(ctx, query, candidates), nil
}

// Recommendations suggests other products to pair with the referenced one.
func (s *CatalogService) Recommendations(ctx context.Context, ref string) ([]*domain.ProductWithDetails, error) {
	product, err := s.GetProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	candidates = lo.Filter(candidates, func(p *domain.ProductWithDetails, _ int) bool {
		return p.ID != product.ID
	})
	return s.assistant.Recommend(ctx, product.Name, candidates), nil
}

func (s *CatalogService) GenerateDescription(ctx context.Context, name, category string) string {
	return s.assistant.GenerateDescription(ctx, name, category)
}
