package transport

import (
	"net/http"

	"shophub/internal/middleware"
	"shophub/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest adds units of a product; quantity defaults to 1
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// UpdateCartItemRequest sets a cart line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=100"`
}

// AddToWishlistRequest saves a product
type AddToWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// CartHandler serves the buyer's cart and wishlist
type CartHandler struct {
	cart   *service.CartService
	logger *zap.Logger
}

func NewCartHandler(cart *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

// RegisterRoutes registers cart and wishlist routes; all require a user
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Get("/summary", h.Summary)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Remove)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListWishlist)
		r.Post("/", h.AddToWishlist)
		r.Delete("/{id}", h.RemoveFromWishlist)
	})
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.cart.List(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.cart.Summary(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "summarize cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cart.Add(r.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add to cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	item, err := h.cart.UpdateQuantity(r.Context(), user.ID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.cart.Remove(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "remove cart item")
		return
	}
	respondSuccess(w)
}

func (h *CartHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.cart.ListWishlist(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list wishlist")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AddToWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	item, err := h.cart.AddToWishlist(r.Context(), user.ID, req.ProductID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add to wishlist")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveFromWishlist(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "remove wishlist item")
		return
	}
	respondSuccess(w)
}
