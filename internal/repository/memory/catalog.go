package memory

import (
	"context"
	"sort"
	"time"

	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/samber/lo"
)

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Images = append(domain.StringList{}, p.Images...)
	return &c
}

func cloneCategory(c *domain.Category) *domain.Category {
	cc := *c
	return &cc
}

func (s *Storage) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := lo.Map(lo.Values(s.categories), func(c *domain.Category, _ int) *domain.Category { return cloneCategory(c) })
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *Storage) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return cloneCategory(category), nil
}

func (s *Storage) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := lo.Find(lo.Values(s.categories), func(c *domain.Category) bool { return c.Slug == slug })
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return cloneCategory(category), nil
}

func (s *Storage) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == category.Name || existing.Slug == category.Slug {
			return nil, repository.ErrCategoryAlreadyExists
		}
	}

	category.ID = s.newID()
	category.CreatedAt = now()
	s.categories[category.ID] = &category
	return cloneCategory(&category), nil
}

// detailsLocked joins a product with its seller, category and review aggregate.
func (s *Storage) detailsLocked(p *domain.Product) *domain.ProductWithDetails {
	details := &domain.ProductWithDetails{
		Product: *cloneProduct(p),
		Seller:  publicUser(s.users[p.SellerID]),
	}
	if p.CategoryID != nil {
		if category, ok := s.categories[*p.CategoryID]; ok {
			details.Category = cloneCategory(category)
		}
	}

	ratings := lo.FilterMap(lo.Values(s.reviews), func(r *domain.Review, _ int) (int, bool) {
		return r.Rating, r.ProductID == p.ID
	})
	details.AverageRating, details.ReviewCount = domain.AverageRating(ratings)

	return details
}

func (s *Storage) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(lo.Values(s.products), func(p *domain.Product, _ int) bool {
		if filter.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			return false
		}
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			return false
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			return false
		}
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		return true
	})
	newestFirst(s, matched, func(p *domain.Product) (string, time.Time) { return p.ID, p.CreatedAt })

	return lo.Map(matched, func(p *domain.Product, _ int) *domain.ProductWithDetails { return s.detailsLocked(p) }), nil
}

func (s *Storage) GetProductByID(ctx context.Context, id string) (*domain.ProductWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return s.detailsLocked(product), nil
}

func (s *Storage) GetProductBySlug(ctx context.Context, slug string) (*domain.ProductWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := lo.Find(lo.Values(s.products), func(p *domain.Product) bool { return p.Slug == slug })
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return s.detailsLocked(product), nil
}

func (s *Storage) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.SomeBy(lo.Values(s.products), func(p *domain.Product) bool { return p.Slug == product.Slug }) {
		return nil, repository.ErrProductSlugTaken
	}

	product.ID = s.newID()
	product.CreatedAt = now()
	product.UpdatedAt = product.CreatedAt
	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}
	if product.Images == nil {
		product.Images = domain.StringList{}
	}
	s.products[product.ID] = cloneProduct(&product)

	return cloneProduct(&product), nil
}

func (s *Storage) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	patch.Apply(product)
	product.UpdatedAt = now()

	return cloneProduct(product), nil
}

func (s *Storage) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	s.deleteProductLocked(id)
	return true, nil
}

// deleteProductLocked removes a product with its reviews and cart and wishlist lines.
func (s *Storage) deleteProductLocked(id string) {
	delete(s.products, id)
	for reviewID, review := range s.reviews {
		if review.ProductID == id {
			delete(s.reviews, reviewID)
		}
	}
	for itemID, item := range s.cartItems {
		if item.ProductID == id {
			delete(s.cartItems, itemID)
		}
	}
	for itemID, item := range s.wishlistItems {
		if item.ProductID == id {
			delete(s.wishlistItems, itemID)
		}
	}
}

func (s *Storage) ListProductReviews(ctx context.Context, productID string) ([]*domain.ReviewWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := lo.FilterMap(lo.Values(s.reviews), func(r *domain.Review, _ int) (*domain.ReviewWithUser, bool) {
		if r.ProductID != productID {
			return nil, false
		}
		user, ok := s.users[r.UserID]
		if !ok {
			return nil, false
		}
		return &domain.ReviewWithUser{Review: *r, User: publicUser(user)}, true
	})
	newestFirst(s, reviews, func(r *domain.ReviewWithUser) (string, time.Time) { return r.ID, r.CreatedAt })

	return reviews, nil
}

func (s *Storage) CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review.ID = s.newID()
	review.CreatedAt = now()
	stored := review
	s.reviews[review.ID] = &stored

	return &review, nil
}
