package transport

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler serves the seller and admin back-office listings
type DashboardHandler struct {
	users   service.UserService
	catalog *service.CatalogService
	orders  *service.OrderService
	logger  *zap.Logger
}

func NewDashboardHandler(users service.UserService, catalog *service.CatalogService, orders *service.OrderService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{users: users, catalog: catalog, orders: orders, logger: logger}
}

// RegisterRoutes registers seller and admin routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole(h.logger, domain.RoleSeller))
		r.Get("/api/seller/products", h.SellerProducts)
		r.Get("/api/seller/orders", h.SellerOrders)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/api/admin/users", h.ListUsers)
		r.Delete("/api/admin/users/{id}", h.DeleteUser)
		r.Get("/api/admin/products", h.AllProducts)
		r.Get("/api/admin/orders", h.AllOrders)
	})
}

func (h *DashboardHandler) SellerProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), domain.ProductFilter{SellerID: user.ID})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list seller products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *DashboardHandler) SellerOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListForSeller(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list seller orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *DashboardHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list users")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, users)
}

func (h *DashboardHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == admin.ID {
		middleware.RespondWithError(w, http.StatusBadRequest, "administrators cannot delete their own account")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "delete user")
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id), zap.String("admin_id", admin.ID))
	respondSuccess(w)
}

func (h *DashboardHandler) AllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), domain.ProductFilter{})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *DashboardHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}
