package transport

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OrderItemRequest asks for units of a product. Prices always come from
// the catalog.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=100"`
}

// CheckoutRequest places an order. Without items the cart is checked out.
type CheckoutRequest struct {
	Items           []OrderItemRequest      `json:"items" validate:"omitempty,max=50,dive"`
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod" validate:"omitempty,oneof=card momo"`
	MomoNumber      string                  `json:"momoNumber" validate:"required_if=PaymentMethod momo,max=20"`
}

// UpdateOrderStatusRequest moves an order along
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// OrderHandler serves orders and payments
type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers order and payment routes; all require a user
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Patch("/{id}/status", h.UpdateStatus)
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/initialize", h.InitializePayment)
		r.Get("/verify/{reference}", h.VerifyPayment)
	})
}

func (req CheckoutRequest) input() service.CheckoutInput {
	return service.CheckoutInput{
		Lines: lo.Map(req.Items, func(item OrderItemRequest, _ int) service.OrderLine {
			return service.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
		}),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		MomoNumber:      req.MomoNumber,
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.List(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	order, err := h.orders.Create(r.Context(), user, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), user, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update order status")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	session, err := h.orders.InitializePayment(r.Context(), user, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "initialize payment")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, session)
}

func (h *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.orders.VerifyPayment(r.Context(), user, chi.URLParam(r, "reference"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "verify payment")
		return
	}

	paid := order.PaymentSettled()
	message := "Payment verified"
	if !paid {
		message = "Payment not completed"
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": paid,
		"message": message,
		"orderId": order.ID,
		"order":   order,
	})
}
