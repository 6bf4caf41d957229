// Package storagetest holds the behavioural suite every Storage backend must pass.
package storagetest

import (
	"context"
	"testing"

	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a ready Storage. Backends may share state across calls,
// so every test creates its own uniquely named fixtures.
type Factory func(t *testing.T) repository.Storage

// Run executes the suite against the storage produced by newStorage.
func Run(t *testing.T, newStorage Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Storage)
	}{
		{"Users", testUsers},
		{"RefreshTokens", testRefreshTokens},
		{"Categories", testCategories},
		{"ProductDetails", testProductDetails},
		{"ProductFiltersAndOrdering", testProductFilters},
		{"ProductUpdateAndDelete", testProductUpdateAndDelete},
		{"Reviews", testReviews},
		{"Cart", testCart},
		{"Wishlist", testWishlist},
		{"Orders", testOrders},
		{"DeleteUserCascades", testDeleteUserCascades},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStorage(t))
		})
	}
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@shophub.test"
}

func createUser(t *testing.T, s repository.Storage, role domain.Role) *domain.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), domain.User{
		Email:        uniqueEmail(string(role)),
		PasswordHash: lo.ToPtr("$2a$10$hash"),
		Name:         "Test " + string(role),
		Role:         role,
		ShopName:     lo.ToPtr("Test Shop"),
	})
	require.NoError(t, err)
	return user
}

func createCategory(t *testing.T, s repository.Storage) *domain.Category {
	t.Helper()
	name := "Category " + uuid.NewString()[:8]
	category, err := s.CreateCategory(context.Background(), domain.Category{
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: lo.ToPtr("Things"),
	})
	require.NoError(t, err)
	return category
}

func createProduct(t *testing.T, s repository.Storage, sellerID string, categoryID *string, name, price string) *domain.Product {
	t.Helper()
	product, err := s.CreateProduct(context.Background(), domain.Product{
		SellerID:         sellerID,
		CategoryID:       categoryID,
		Name:             name,
		Slug:             domain.UniqueSlug(name),
		ShortDescription: lo.ToPtr("Short"),
		Price:            domain.MustMoney(price),
		Images:           domain.StringList{"https://img.test/1.png", "https://img.test/2.png"},
		Stock:            10,
		Status:           domain.ProductStatusActive,
	})
	require.NoError(t, err)
	return product
}

func testUsers(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, domain.User{Email: uniqueEmail("user"), Name: "Ama"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.RoleBuyer, created.Role, "role defaults to buyer")
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, domain.User{Email: created.Email, Name: "Duplicate"})
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)

	byID, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	byEmail, err := s.GetUserByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = s.GetUser(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = s.GetUserByEmail(ctx, "missing@shophub.test")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	updated, err := s.UpdateUser(ctx, created.ID, domain.UserPatch{Name: lo.ToPtr("Ama Mensah"), Role: lo.ToPtr(domain.RoleSeller)})
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", updated.Name)
	assert.Equal(t, domain.RoleSeller, updated.Role)
	assert.Equal(t, created.Email, updated.Email)

	unchanged, err := s.UpdateUser(ctx, created.ID, domain.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", unchanged.Name)

	_, err = s.UpdateUser(ctx, uuid.NewString(), domain.UserPatch{Name: lo.ToPtr("x")})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, created.ID)

	deleted, err := s.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testRefreshTokens(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	user := createUser(t, s, domain.RoleBuyer)

	token := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: user.CreatedAt.AddDate(0, 0, 30),
		CreatedAt: user.CreatedAt,
	}
	require.NoError(t, s.CreateRefreshToken(ctx, token))

	found, err := s.FindRefreshToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)

	require.NoError(t, s.RevokeRefreshToken(ctx, token.Token))

	_, err = s.FindRefreshToken(ctx, token.Token)
	assert.ErrorIs(t, err, repository.ErrRefreshTokenRevoked)

	_, err = s.FindRefreshToken(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)
	assert.ErrorIs(t, s.RevokeRefreshToken(ctx, "missing"), repository.ErrRefreshTokenNotFound)
}

func testCategories(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	category := createCategory(t, s)

	_, err := s.CreateCategory(ctx, domain.Category{Name: category.Name, Slug: category.Slug + "-x"})
	assert.ErrorIs(t, err, repository.ErrCategoryAlreadyExists)

	bySlug, err := s.GetCategoryBySlug(ctx, category.Slug)
	require.NoError(t, err)
	assert.Equal(t, category.ID, bySlug.ID)
	require.NotNil(t, bySlug.Description)
	assert.Equal(t, "Things", *bySlug.Description)

	byID, err := s.GetCategoryByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.Name, byID.Name)

	_, err = s.GetCategoryBySlug(ctx, "no-such-category")
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
	_, err = s.GetCategoryByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	for i := 1; i < len(categories); i++ {
		assert.LessOrEqual(t, categories[i-1].Name, categories[i].Name, "categories are ordered by name")
	}
}

func testProductDetails(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	category := createCategory(t, s)

	created := createProduct(t, s, seller.ID, &category.ID, "Kente Scarf", "25.50")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.ProductStatusActive, created.Status)

	details, err := s.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kente Scarf", details.Name)
	assert.True(t, domain.MustMoney("25.50").Equal(details.Price))
	assert.Equal(t, []string{"https://img.test/1.png", "https://img.test/2.png"}, []string(details.Images))
	require.NotNil(t, details.Seller)
	assert.Equal(t, seller.Name, details.Seller.Name)
	assert.Nil(t, details.Seller.PasswordHash, "joined seller never carries the password hash")
	require.NotNil(t, details.Category)
	assert.Equal(t, category.Slug, details.Category.Slug)
	assert.Nil(t, details.AverageRating)
	assert.Zero(t, details.ReviewCount)

	bySlug, err := s.GetProductBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = s.GetProductByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	_, err = s.GetProductBySlug(ctx, "missing-slug")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = s.CreateProduct(ctx, domain.Product{
		SellerID: seller.ID,
		Name:     "Copy",
		Slug:     created.Slug,
		Price:    domain.MustMoney("1.00"),
	})
	assert.ErrorIs(t, err, repository.ErrProductSlugTaken)

	uncategorised := createProduct(t, s, seller.ID, nil, "Loose Item", "3.00")
	loose, err := s.GetProductByID(ctx, uncategorised.ID)
	require.NoError(t, err)
	assert.Nil(t, loose.Category)
}

func testProductFilters(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	category := createCategory(t, s)

	first := createProduct(t, s, seller.ID, &category.ID, "First", "1.00")
	second := createProduct(t, s, seller.ID, nil, "Second", "2.00")
	third := createProduct(t, s, seller.ID, &category.ID, "Third", "3.00")

	_, err := s.UpdateProduct(ctx, second.ID, domain.ProductPatch{IsFeatured: lo.ToPtr(true)})
	require.NoError(t, err)
	_, err = s.UpdateProduct(ctx, third.ID, domain.ProductPatch{Status: lo.ToPtr(domain.ProductStatusDraft)})
	require.NoError(t, err)

	all, err := s.ListProducts(ctx, domain.ProductFilter{SellerID: seller.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID}, "newest first")

	active, err := s.ListProducts(ctx, domain.ProductFilter{SellerID: seller.ID, Status: domain.ProductStatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	inCategory, err := s.ListProducts(ctx, domain.ProductFilter{CategoryID: category.ID})
	require.NoError(t, err)
	assert.Len(t, inCategory, 2)

	featured, err := s.ListProducts(ctx, domain.ProductFilter{SellerID: seller.ID, Featured: lo.ToPtr(true)})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, second.ID, featured[0].ID)

	none, err := s.ListProducts(ctx, domain.ProductFilter{SellerID: uuid.NewString()})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testProductUpdateAndDelete(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	buyer := createUser(t, s, domain.RoleBuyer)
	product := createProduct(t, s, seller.ID, nil, "Basket", "40.00")

	updated, err := s.UpdateProduct(ctx, product.ID, domain.ProductPatch{
		Price:  lo.ToPtr(domain.MustMoney("35.00")),
		Stock:  lo.ToPtr(4),
		Images: &[]string{"https://img.test/new.png"},
	})
	require.NoError(t, err)
	assert.True(t, domain.MustMoney("35.00").Equal(updated.Price))
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, "Basket", updated.Name)
	assert.Equal(t, []string{"https://img.test/new.png"}, []string(updated.Images))

	_, err = s.UpdateProduct(ctx, uuid.NewString(), domain.ProductPatch{Stock: lo.ToPtr(1)})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = s.AddToWishlist(ctx, domain.WishlistItem{UserID: buyer.ID, ProductID: product.ID})
	require.NoError(t, err)

	deleted, err := s.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	cart, err := s.ListCartItems(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart, "cart lines go with the product")

	wishlist, err := s.ListWishlistItems(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, wishlist, "wishlist entries go with the product")
}

func testReviews(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	product := createProduct(t, s, seller.ID, nil, "Reviewed", "10.00")

	for _, rating := range []int{5, 3, 4} {
		reviewer := createUser(t, s, domain.RoleBuyer)
		review, err := s.CreateReview(ctx, domain.Review{
			ProductID: product.ID,
			UserID:    reviewer.ID,
			Rating:    rating,
			Comment:   lo.ToPtr("ok"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, review.ID)
	}

	reviews, err := s.ListProductReviews(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, 4, reviews[0].Rating, "newest first")
	require.NotNil(t, reviews[0].User)
	assert.NotEmpty(t, reviews[0].User.Name)
	assert.Nil(t, reviews[0].User.PasswordHash)

	details, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, details.AverageRating)
	assert.InDelta(t, 4.0, *details.AverageRating, 1e-9)
	assert.Equal(t, 3, details.ReviewCount)

	empty, err := s.ListProductReviews(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testCart(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	buyer := createUser(t, s, domain.RoleBuyer)
	scarf := createProduct(t, s, seller.ID, nil, "Scarf", "10.00")
	mug := createProduct(t, s, seller.ID, nil, "Mug", "5.50")

	first, err := s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: scarf.ID, Quantity: 2})
	require.NoError(t, err)
	merged, err := s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: scarf.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID, "adding the same product merges into one line")
	assert.Equal(t, 3, merged.Quantity)

	mugLine, err := s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)

	items, err := s.ListCartItems(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, mugLine.ID, items[0].ID, "newest first")
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Mug", items[0].Product.Name)

	lines := make([]domain.CartItemWithProduct, 0, len(items))
	for _, item := range items {
		lines = append(lines, *item)
	}
	assert.Equal(t, "35.50", domain.CartSubtotal(lines).String())

	got, err := s.GetCartItem(ctx, mugLine.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, got.UserID)

	updated, err := s.UpdateCartItem(ctx, mugLine.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = s.UpdateCartItem(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)
	_, err = s.GetCartItem(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)

	removed, err := s.RemoveFromCart(ctx, mugLine.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveFromCart(ctx, mugLine.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, s.ClearCart(ctx, buyer.ID))
	items, err = s.ListCartItems(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testWishlist(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	buyer := createUser(t, s, domain.RoleBuyer)
	product := createProduct(t, s, seller.ID, nil, "Lamp", "60.00")

	first, err := s.AddToWishlist(ctx, domain.WishlistItem{UserID: buyer.ID, ProductID: product.ID})
	require.NoError(t, err)
	again, err := s.AddToWishlist(ctx, domain.WishlistItem{UserID: buyer.ID, ProductID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "wishing twice returns the existing entry")

	items, err := s.ListWishlistItems(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Lamp", items[0].Product.Name)
	require.NotNil(t, items[0].Product.Seller)
	assert.Equal(t, seller.ID, items[0].Product.Seller.ID)

	removed, err := s.RemoveFromWishlist(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveFromWishlist(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func testOrders(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	buyer := createUser(t, s, domain.RoleBuyer)

	items := domain.OrderItems{
		{ProductID: uuid.NewString(), Name: "Scarf", Price: domain.MustMoney("10.00"), Quantity: 2, Image: "https://img.test/s.png"},
		{ProductID: uuid.NewString(), Name: "Mug", Price: domain.MustMoney("5.50"), Quantity: 1},
	}
	address := &domain.ShippingAddress{Name: "Kofi", Phone: "0240000000", Address: "1 Ring Rd", City: "Accra", Region: "Greater Accra", Country: "Ghana"}

	first, err := s.CreateOrder(ctx, domain.Order{
		UserID:          buyer.ID,
		TotalAmount:     items.Subtotal().Add(domain.MustMoney("10.00")),
		PaymentMethod:   lo.ToPtr("momo"),
		ShippingAddress: address,
		Items:           items,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, first.Status)

	got, err := s.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "35.50", got.TotalAmount.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Scarf", got.Items[0].Name)
	assert.True(t, domain.MustMoney("10.00").Equal(got.Items[0].Price))
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, *address, *got.ShippingAddress)
	assert.Nil(t, got.PaymentReference)

	second, err := s.CreateOrder(ctx, domain.Order{UserID: buyer.ID, TotalAmount: domain.MustMoney("10.00")})
	require.NoError(t, err)
	assert.NotNil(t, second.Items)

	orders, err := s.ListOrders(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")

	everyone, err := s.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(everyone), 2)

	shipped, err := s.UpdateOrderStatus(ctx, first.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, shipped.Status)

	paid, err := s.UpdateOrderPayment(ctx, second.ID, domain.OrderPayment{
		Reference:     "ref-123",
		PaymentStatus: domain.PaymentStatusSuccess,
		Status:        domain.OrderStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentReference)
	assert.Equal(t, "ref-123", *paid.PaymentReference)
	require.NotNil(t, paid.PaymentStatus)
	assert.Equal(t, domain.PaymentStatusSuccess, *paid.PaymentStatus)

	_, err = s.GetOrderByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	_, err = s.UpdateOrderStatus(ctx, uuid.NewString(), domain.OrderStatusPaid)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	_, err = s.UpdateOrderPayment(ctx, uuid.NewString(), domain.OrderPayment{Status: domain.OrderStatusPaid})
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func testDeleteUserCascades(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	seller := createUser(t, s, domain.RoleSeller)
	buyer := createUser(t, s, domain.RoleBuyer)
	product := createProduct(t, s, seller.ID, nil, "Cascade", "9.99")

	_, err := s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = s.CreateReview(ctx, domain.Review{ProductID: product.ID, UserID: buyer.ID, Rating: 5})
	require.NoError(t, err)

	deleted, err := s.DeleteUser(ctx, seller.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = s.GetProductByID(ctx, product.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound, "seller's products are removed with the seller")

	cart, err := s.ListCartItems(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}
