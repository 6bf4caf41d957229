package service

import (
	"context"
	"testing"

	"shophub/internal/ai"
	"shophub/internal/domain"
	"shophub/internal/payment"
	"shophub/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	store   *memory.Storage
	catalog *CatalogService
	reviews *ReviewService
	cart    *CartService
	orders  *OrderService
}

func newServices(t *testing.T, gateway payment.Gateway) *services {
	t.Helper()

	if gateway == nil {
		gateway = payment.NewMockGateway()
	}
	store := memory.NewStorage()
	logger := zap.NewNop()
	assistant := ai.NewAssistant(ai.Unavailable{}, logger)
	catalog := NewCatalogService(store, store, assistant, logger)

	return &services{
		store:   store,
		catalog: catalog,
		reviews: NewReviewService(store, catalog, assistant),
		cart:    NewCartService(store, store, store, DefaultShippingFee),
		orders:  NewOrderService(store, store, store, gateway, PaymentOptions{ShippingFee: DefaultShippingFee}, logger),
	}
}

func (s *services) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := s.store.CreateUser(context.Background(), domain.User{Email: email, Name: email, Role: role})
	require.NoError(t, err)
	return user
}

func (s *services) product(t *testing.T, seller *domain.User, name, price string, stock int) *domain.Product {
	t.Helper()
	product, err := s.catalog.CreateProduct(context.Background(), seller, domain.Product{
		Name:  name,
		Price: domain.MustMoney(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}
