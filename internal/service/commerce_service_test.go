package service

import (
	"context"
	"errors"
	"testing"

	"shophub/internal/ai"
	"shophub/internal/domain"
	"shophub/internal/payment"
	"shophub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews_AverageAndSummary(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Clay Pot", "30.00", 2)

	summary, err := s.reviews.Summary(ctx, product.Slug)
	require.NoError(t, err)
	assert.Equal(t, ai.NoReviewsSummary, summary.Summary)

	for _, rating := range []int{5, 3, 4} {
		_, err := s.reviews.Create(ctx, buyer, product.ID, rating, nil)
		require.NoError(t, err)
	}

	_, err = s.reviews.Create(ctx, buyer, product.ID, 6, nil)
	assert.True(t, IsValidationError(err))
	_, err = s.reviews.Create(ctx, buyer, "missing", 4, nil)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	details, err := s.catalog.GetProduct(ctx, product.Slug)
	require.NoError(t, err)
	require.NotNil(t, details.AverageRating)
	assert.InDelta(t, 4.0, *details.AverageRating, 1e-9)
	assert.Equal(t, 3, details.ReviewCount)

	reviews, err := s.reviews.List(ctx, product.Slug)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)

	summary, err = s.reviews.Summary(ctx, product.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Based on 3 reviews, customers rated this product 4.0/5 stars.", summary.Summary)
}

func TestCart_SubtotalAndSummary(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	scarf := s.product(t, seller, "Scarf", "10.00", 5)
	soap := s.product(t, seller, "Soap", "5.50", 5)

	empty, err := s.cart.Summary(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, empty.Total.IsZero())

	_, err = s.cart.Add(ctx, buyer.ID, scarf.ID, 1)
	require.NoError(t, err)
	merged, err := s.cart.Add(ctx, buyer.ID, scarf.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Quantity)
	_, err = s.cart.Add(ctx, buyer.ID, soap.ID, 1)
	require.NoError(t, err)

	summary, err := s.cart.Summary(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, "25.50", summary.Subtotal.String())
	assert.Equal(t, "10.00", summary.Shipping.String())
	assert.Equal(t, "35.50", summary.Total.String())
}

func TestCart_StockAndAvailability(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Basket", "15.00", 2)

	_, err := s.cart.Add(ctx, buyer.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = s.cart.Add(ctx, buyer.ID, product.ID, 1)
	assert.True(t, IsValidationError(err))

	_, err = s.cart.Add(ctx, buyer.ID, product.ID, 0)
	assert.True(t, IsValidationError(err))

	_, err = s.cart.Add(ctx, buyer.ID, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	archived := domain.ProductStatusArchived
	_, err = s.catalog.UpdateProduct(ctx, seller, product.ID, domain.ProductPatch{Status: &archived})
	require.NoError(t, err)
	_, err = s.cart.Add(ctx, s.user(t, "late@example.com", domain.RoleBuyer).ID, product.ID, 1)
	assert.True(t, IsValidationError(err))
}

func TestCart_OwnershipAndRemove(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	intruder := s.user(t, "intruder@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Drum", "80.00", 4)

	item, err := s.cart.Add(ctx, buyer.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = s.cart.UpdateQuantity(ctx, intruder.ID, item.ID, 2)
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)
	assert.ErrorIs(t, s.cart.Remove(ctx, intruder.ID, item.ID), repository.ErrCartItemNotFound)

	updated, err := s.cart.UpdateQuantity(ctx, buyer.ID, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	_, err = s.cart.UpdateQuantity(ctx, buyer.ID, item.ID, 5)
	assert.True(t, IsValidationError(err))

	require.NoError(t, s.cart.Remove(ctx, buyer.ID, item.ID))
	assert.ErrorIs(t, s.cart.Remove(ctx, buyer.ID, item.ID), repository.ErrCartItemNotFound)
}

func TestWishlist(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	intruder := s.user(t, "intruder@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Mask", "40.00", 1)

	first, err := s.cart.AddToWishlist(ctx, buyer.ID, product.ID)
	require.NoError(t, err)
	again, err := s.cart.AddToWishlist(ctx, buyer.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = s.cart.AddToWishlist(ctx, buyer.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	items, err := s.cart.ListWishlist(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Mask", items[0].Product.Name)

	assert.ErrorIs(t, s.cart.RemoveFromWishlist(ctx, intruder.ID, first.ID), repository.ErrWishlistItemNotFound)
	require.NoError(t, s.cart.RemoveFromWishlist(ctx, buyer.ID, first.ID))
	assert.ErrorIs(t, s.cart.RemoveFromWishlist(ctx, buyer.ID, first.ID), repository.ErrWishlistItemNotFound)
}

func TestOrders_CreateSnapshotsPrices(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	scarf := s.product(t, seller, "Scarf", "10.00", 5)
	soap := s.product(t, seller, "Soap", "5.50", 5)

	order, err := s.orders.Create(ctx, buyer, CheckoutInput{
		Lines: []OrderLine{{ProductID: scarf.ID, Quantity: 2}, {ProductID: soap.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "35.50", order.TotalAmount.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Scarf", order.Items[0].Name)

	price := domain.MustMoney("99.00")
	_, err = s.catalog.UpdateProduct(ctx, seller, scarf.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)

	stored, err := s.orders.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "10.00", stored[0].Items[0].Price.String())

	_, err = s.orders.Create(ctx, buyer, CheckoutInput{})
	assert.True(t, IsValidationError(err))
	_, err = s.orders.Create(ctx, buyer, CheckoutInput{Lines: []OrderLine{{ProductID: scarf.ID, Quantity: 6}}})
	assert.True(t, IsValidationError(err))
}

func TestOrders_UpdateStatus(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	other := s.user(t, "other@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Scarf", "10.00", 5)

	order, err := s.orders.Create(ctx, buyer, CheckoutInput{Lines: []OrderLine{{ProductID: product.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = s.orders.UpdateStatus(ctx, buyer, order.ID, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.orders.UpdateStatus(ctx, other, order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	_, err = s.orders.UpdateStatus(ctx, seller, order.ID, "lost")
	assert.True(t, IsValidationError(err))

	shipped, err := s.orders.UpdateStatus(ctx, seller, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, shipped.Status)

	_, err = s.orders.UpdateStatus(ctx, buyer, order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	second, err := s.orders.Create(ctx, buyer, CheckoutInput{Lines: []OrderLine{{ProductID: product.ID, Quantity: 1}}})
	require.NoError(t, err)
	cancelled, err := s.orders.UpdateStatus(ctx, buyer, second.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	_, err = s.orders.UpdateStatus(ctx, seller, "missing", domain.OrderStatusPaid)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestPayments_InitializeAndVerify(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Scarf", "10.00", 5)

	_, err := s.cart.Add(ctx, buyer.ID, product.ID, 2)
	require.NoError(t, err)

	session, err := s.orders.InitializePayment(ctx, buyer, CheckoutInput{PaymentMethod: "momo", MomoNumber: "0240000000"})
	require.NoError(t, err)
	assert.Equal(t, session.OrderID, session.Reference)
	assert.Equal(t, "/payment-success?reference="+session.OrderID, session.AuthorizationURL)

	cart, err := s.cart.List(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	order, err := s.orders.VerifyPayment(ctx, buyer, session.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaymentStatus)
	assert.Equal(t, domain.PaymentStatusSuccess, *order.PaymentStatus)
	assert.Equal(t, "30.00", order.TotalAmount.String())

	_, err = s.orders.VerifyPayment(ctx, s.user(t, "other@example.com", domain.RoleBuyer), session.Reference)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestPayments_VerifyAfterFulfilmentKeepsStatus(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	admin := s.user(t, "admin@example.com", domain.RoleAdmin)
	product := s.product(t, seller, "Scarf", "10.00", 5)

	session, err := s.orders.InitializePayment(ctx, buyer, CheckoutInput{
		Lines: []OrderLine{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	order, err := s.orders.VerifyPayment(ctx, buyer, session.Reference)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, order.Status)

	for _, status := range []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusDelivered} {
		_, err = s.orders.UpdateStatus(ctx, admin, order.ID, status)
		require.NoError(t, err)
	}

	again, err := s.orders.VerifyPayment(ctx, buyer, session.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, again.Status)
	assert.True(t, again.PaymentSettled())
}

type failingGateway struct{}

func (failingGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	return nil, errors.Join(payment.ErrGateway, errors.New("connection refused"))
}

func (failingGateway) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	return nil, payment.ErrGateway
}

func TestPayments_GatewayFailureKeepsOrderAndCart(t *testing.T) {
	s := newServices(t, failingGateway{})
	ctx := context.Background()
	seller := s.user(t, "seller@example.com", domain.RoleSeller)
	buyer := s.user(t, "buyer@example.com", domain.RoleBuyer)
	product := s.product(t, seller, "Scarf", "10.00", 5)

	_, err := s.cart.Add(ctx, buyer.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = s.orders.InitializePayment(ctx, buyer, CheckoutInput{})
	assert.ErrorIs(t, err, payment.ErrGateway)

	orders, err := s.orders.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	require.NotNil(t, orders[0].PaymentStatus)
	assert.Equal(t, domain.PaymentStatusFailed, *orders[0].PaymentStatus)

	cart, err := s.cart.List(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}
