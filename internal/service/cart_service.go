package service

import (
	"context"
	"errors"
	"fmt"

	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/samber/lo"
)

// DefaultShippingFee is the flat fee added to every non-empty checkout.
var DefaultShippingFee = domain.MustMoney("10.00")

// CartSummary prices the current cart.
type CartSummary struct {
	Items    []*domain.CartItemWithProduct `json:"items"`
	Subtotal domain.Money                  `json:"subtotal"`
	Shipping domain.Money                  `json:"shipping"`
	Total    domain.Money                  `json:"total"`
}

// CartService manages a buyer's cart and wishlist.
type CartService struct {
	cart        repository.CartRepository
	wishlist    repository.WishlistRepository
	products    repository.ProductRepository
	shippingFee domain.Money
}

func NewCartService(
	cart repository.CartRepository,
	wishlist repository.WishlistRepository,
	products repository.ProductRepository,
	shippingFee domain.Money,
) *CartService {
	return &CartService{
		cart:        cart,
		wishlist:    wishlist,
		products:    products,
		shippingFee: shippingFee,
	}
}

func (s *CartService) List(ctx context.Context, userID string) ([]*domain.CartItemWithProduct, error) {
	items, err := s.cart.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Summary returns the cart with subtotal, shipping and total. An empty cart
// carries no shipping.
func (s *CartService) Summary(ctx context.Context, userID string) (*CartSummary, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := domain.CartSubtotal(lo.FromSlicePtr(items))
	shipping := domain.Money{}
	if len(items) > 0 {
		shipping = s.shippingFee
	}

	return &CartSummary{
		Items:    items,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}, nil
}

// Add puts quantity units of a product in the cart, merging with an
// existing line for the same product.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}

	product, err := s.purchasable(ctx, productID)
	if err != nil {
		return nil, err
	}

	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	inCart := 0
	if existing, ok := lo.Find(items, func(i *domain.CartItemWithProduct) bool { return i.ProductID == productID }); ok {
		inCart = existing.Quantity
	}
	if inCart+quantity > product.Stock {
		return nil, invalid("quantity", fmt.Sprintf("only %d in stock", product.Stock))
	}

	item, err := s.cart.AddToCart(ctx, domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return item, nil
}

// UpdateQuantity sets the quantity of one of the user's cart lines.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}

	item, err := s.ownedItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	product, err := s.purchasable(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, invalid("quantity", fmt.Sprintf("only %d in stock", product.Stock))
	}

	updated, err := s.cart.UpdateCartItem(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return updated, nil
}

// Remove deletes one of the user's cart lines. Removing it again reports
// ErrCartItemNotFound.
func (s *CartService) Remove(ctx context.Context, userID, id string) error {
	if _, err := s.ownedItem(ctx, userID, id); err != nil {
		return err
	}

	removed, err := s.cart.RemoveFromCart(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !removed {
		return repository.ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cart.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ownedItem hides other users' items behind ErrCartItemNotFound.
func (s *CartService) ownedItem(ctx context.Context, userID, id string) (*domain.CartItem, error) {
	item, err := s.cart.GetCartItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item.UserID != userID {
		return nil, repository.ErrCartItemNotFound
	}
	return item, nil
}

func (s *CartService) purchasable(ctx context.Context, productID string) (*domain.ProductWithDetails, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product.Status != domain.ProductStatusActive {
		return nil, invalid("productId", "product is not available")
	}
	return product, nil
}

func (s *CartService) ListWishlist(ctx context.Context, userID string) ([]*domain.WishlistItemWithProduct, error) {
	items, err := s.wishlist.ListWishlistItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

// AddToWishlist saves a product for later. Saving it twice returns the
// existing entry.
func (s *CartService) AddToWishlist(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	item, err := s.wishlist.AddToWishlist(ctx, domain.WishlistItem{UserID: userID, ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return item, nil
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, id string) error {
	items, err := s.ListWishlist(ctx, userID)
	if err != nil {
		return err
	}
	if !lo.ContainsBy(items, func(i *domain.WishlistItemWithProduct) bool { return i.ID == id }) {
		return repository.ErrWishlistItemNotFound
	}

	removed, err := s.wishlist.RemoveFromWishlist(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if !removed {
		return repository.ErrWishlistItemNotFound
	}
	return nil
}
