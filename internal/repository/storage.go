package repository

import (
	"context"
	"errors"

	"shophub/internal/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user with this email already exists")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductSlugTaken      = errors.New("product with this slug already exists")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name or slug already exists")
	ErrOrderNotFound         = errors.New("order not found")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrWishlistItemNotFound  = errors.New("wishlist item not found")
	ErrRefreshTokenNotFound  = errors.New("refresh token not found")
	ErrRefreshTokenRevoked   = errors.New("refresh token has been revoked")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}

// ProductRepository defines the interface for product data access.
// Reads return products joined with seller, category and review aggregate.
type ProductRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductWithDetails, error)
	GetProductByID(ctx context.Context, id string) (*domain.ProductWithDetails, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.ProductWithDetails, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// OrderRepository defines the interface for order data access.
// An empty userID lists every order.
type OrderRepository interface {
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	UpdateOrderPayment(ctx context.Context, id string, payment domain.OrderPayment) (*domain.Order, error)
}

// CartRepository defines the interface for cart data access.
// Adding a product that is already in the cart increases its quantity.
type CartRepository interface {
	ListCartItems(ctx context.Context, userID string) ([]*domain.CartItemWithProduct, error)
	GetCartItem(ctx context.Context, id string) (*domain.CartItem, error)
	AddToCart(ctx context.Context, item domain.CartItem) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int) (*domain.CartItem, error)
	RemoveFromCart(ctx context.Context, id string) (bool, error)
	ClearCart(ctx context.Context, userID string) error
}

// WishlistRepository defines the interface for wishlist data access.
// Adding a product twice returns the existing entry.
type WishlistRepository interface {
	ListWishlistItems(ctx context.Context, userID string) ([]*domain.WishlistItemWithProduct, error)
	AddToWishlist(ctx context.Context, item domain.WishlistItem) (*domain.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, id string) (bool, error)
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	ListProductReviews(ctx context.Context, productID string) ([]*domain.ReviewWithUser, error)
	CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error)
}

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// Storage is the single seam through which all entity persistence flows.
// The Postgres and in-memory backends behave identically behind it.
type Storage interface {
	UserRepository
	ProductRepository
	CategoryRepository
	OrderRepository
	CartRepository
	WishlistRepository
	ReviewRepository
	RefreshTokenRepository
}
