package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shophub/internal/config"
	"shophub/internal/domain"
	"shophub/internal/repository/memory"
	"shophub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	handler http.Handler
	store   *memory.Storage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", Env: "test"},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT:     config.JWTConfig{Secret: "test-secret", AccessExpiry: 60, RefreshExpiry: 1},
		Payment: config.PaymentConfig{Currency: "GHS", ShippingFee: "10.00"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	store := memory.NewStorage()
	handler, err := NewRouter(cfg, zap.NewNop(), Dependencies{Storage: store})
	require.NoError(t, err)
	return &testAPI{handler: handler, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (a *testAPI) register(t *testing.T, email string, role domain.Role) session {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "secret123",
		"name":     "Test User",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var s session
	decode(t, w, &s)
	return s
}

// admin creates an admin account directly, since registration refuses the role.
func (a *testAPI) admin(t *testing.T) session {
	t.Helper()

	hash, err := service.HashPassword("admin123")
	require.NoError(t, err)
	_, err = a.store.CreateUser(context.Background(), domain.User{
		Email:        "admin@shop.test",
		PasswordHash: &hash,
		Name:         "Admin",
		Role:         domain.RoleAdmin,
	})
	require.NoError(t, err)

	w := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@shop.test",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var s session
	decode(t, w, &s)
	return s
}

func (a *testAPI) createProduct(t *testing.T, token, name, price string, stock int) domain.Product {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":  name,
		"price": json.Number(price),
		"stock": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p domain.Product
	decode(t, w, &p)
	return p
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestRegister_DuplicateEmailIsValidationError(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "dup@shop.test", domain.RoleBuyer)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "DUP@shop.test",
		"password": "secret123",
		"name":     "Again",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Details struct {
				ValidationErrors []struct {
					Field string `json:"field"`
				} `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	decode(t, w, &body)
	require.Len(t, body.Error.Details.ValidationErrors, 1)
	assert.Equal(t, "email", body.Error.Details.ValidationErrors[0].Field)
}

func TestRegister_AdminRoleIsRefused(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "boss@shop.test",
		"password": "secret123",
		"name":     "Boss",
		"role":     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_MultibytePasswordOverLimit(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "efe@shop.test",
		"password": strings.Repeat("é", 40),
		"name":     "Efe",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/auth/me", "/api/wishlist"} {
		w := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := api.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_ReturnsCaller(t *testing.T) {
	api := newTestAPI(t)
	buyer := api.register(t, "me@shop.test", domain.RoleBuyer)

	w := api.do(t, http.MethodGet, "/api/auth/me", buyer.Token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	decode(t, w, &user)
	assert.Equal(t, buyer.User.ID, user.ID)
	assert.Equal(t, domain.RoleBuyer, user.Role)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestCreateProduct_RoleGateAndSellerOwnership(t *testing.T) {
	api := newTestAPI(t)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)

	w := api.do(t, http.MethodPost, "/api/products", buyer.Token, map[string]interface{}{
		"name":  "Lamp",
		"price": 20,
		"stock": 3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	product := api.createProduct(t, seller.Token, "Desk Lamp", "20.00", 3)
	assert.Equal(t, seller.User.ID, product.SellerID)
	assert.True(t, strings.HasPrefix(product.Slug, "desk-lamp-"), product.Slug)

	other := api.register(t, "other@shop.test", domain.RoleSeller)
	w = api.do(t, http.MethodDelete, "/api/products/"+product.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, "/api/products/"+product.ID, seller.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/products/"+product.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_RemoveTwice(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	product := api.createProduct(t, seller.Token, "Mug", "12.75", 5)

	w := api.do(t, http.MethodPost, "/api/cart", buyer.Token, map[string]interface{}{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var item domain.CartItem
	decode(t, w, &item)

	w = api.do(t, http.MethodGet, "/api/cart/summary", buyer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
	}
	decode(t, w, &summary)
	assert.Equal(t, "25.50", summary.Subtotal)
	assert.Equal(t, "35.50", summary.Total)

	w = api.do(t, http.MethodDelete, "/api/cart/"+item.ID, buyer.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/cart/"+item.ID, buyer.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_QuantityBeyondStock(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	product := api.createProduct(t, seller.Token, "Rare Vase", "99.00", 1)

	w := api.do(t, http.MethodPost, "/api/cart", buyer.Token, map[string]interface{}{
		"productId": product.ID,
		"quantity":  2,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	api.createProduct(t, seller.Token, "Wireless Headphones", "150.00", 4)
	api.createProduct(t, seller.Token, "Coffee Grinder", "45.00", 4)

	w := api.do(t, http.MethodGet, "/api/search?q=headphones", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []domain.Product
	decode(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Wireless Headphones", results[0].Name)

	w = api.do(t, http.MethodGet, "/api/ai/search?query=grinder", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Coffee Grinder", results[0].Name)

	w = api.do(t, http.MethodGet, "/api/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviews_AverageRating(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	product := api.createProduct(t, seller.Token, "Kettle", "30.00", 10)

	w := api.do(t, http.MethodGet, "/api/products/"+product.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details map[string]interface{}
	decode(t, w, &details)
	assert.NotContains(t, details, "averageRating")

	for i, rating := range []int{3, 4, 5} {
		buyer := api.register(t, fmt.Sprintf("reviewer%d@shop.test", i), domain.RoleBuyer)
		w := api.do(t, http.MethodPost, "/api/reviews", buyer.Token, map[string]interface{}{
			"productId": product.ID,
			"rating":    rating,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/products/"+product.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var withReviews struct {
		AverageRating *float64 `json:"averageRating"`
		ReviewCount   int      `json:"reviewCount"`
	}
	decode(t, w, &withReviews)
	require.NotNil(t, withReviews.AverageRating)
	assert.InDelta(t, 4.0, *withReviews.AverageRating, 0.001)
	assert.Equal(t, 3, withReviews.ReviewCount)

	buyer := api.register(t, "late@shop.test", domain.RoleBuyer)
	w = api.do(t, http.MethodPost, "/api/reviews", buyer.Token, map[string]interface{}{
		"productId": product.ID,
		"rating":    6,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_MockPaymentFlow(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	product := api.createProduct(t, seller.Token, "Backpack", "40.00", 5)

	w := api.do(t, http.MethodPost, "/api/cart", buyer.Token, map[string]interface{}{"productId": product.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/payments/initialize", buyer.Token, map[string]interface{}{
		"paymentMethod": "card",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var payment service.PaymentSession
	decode(t, w, &payment)
	assert.Equal(t, payment.OrderID, payment.Reference)
	assert.Contains(t, payment.AuthorizationURL, payment.Reference)

	w = api.do(t, http.MethodGet, "/api/cart", buyer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []interface{}
	decode(t, w, &items)
	assert.Empty(t, items)

	w = api.do(t, http.MethodGet, "/api/payments/verify/"+payment.Reference, seller.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/payments/verify/"+payment.Reference, buyer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verified struct {
		Success bool         `json:"success"`
		OrderID string       `json:"orderId"`
		Order   domain.Order `json:"order"`
	}
	decode(t, w, &verified)
	assert.True(t, verified.Success)
	assert.Equal(t, payment.OrderID, verified.OrderID)
	assert.Equal(t, domain.OrderStatusPaid, verified.Order.Status)
	assert.Equal(t, "50.00", verified.Order.TotalAmount.String())
}

func TestCheckout_MomoRequiresNumber(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register(t, "seller@shop.test", domain.RoleSeller)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	product := api.createProduct(t, seller.Token, "Scarf", "15.00", 5)

	w := api.do(t, http.MethodPost, "/api/orders", buyer.Token, map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"paymentMethod": "momo",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	buyer := api.register(t, "buyer@shop.test", domain.RoleBuyer)
	admin := api.admin(t)

	w := api.do(t, http.MethodGet, "/api/admin/users", buyer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/admin/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []domain.User
	decode(t, w, &users)
	assert.Len(t, users, 2)

	w = api.do(t, http.MethodDelete, "/api/admin/users/"+admin.User.ID, admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, "/api/admin/users/"+buyer.User.ID, admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/admin/users/"+buyer.User.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/admin/categories", admin.Token, map[string]string{"name": "Garden Tools"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category domain.Category
	decode(t, w, &category)
	assert.Equal(t, "garden-tools", category.Slug)

	w = api.do(t, http.MethodGet, "/api/categories/garden-tools", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_RejectsBadShippingFee(t *testing.T) {
	cfg := &config.Config{Payment: config.PaymentConfig{ShippingFee: "ten"}}

	_, err := NewRouter(cfg, zap.NewNop(), Dependencies{Storage: memory.NewStorage()})

	assert.Error(t, err)
}
