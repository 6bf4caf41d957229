package service

import (
	"context"
	"errors"
	"fmt"

	"shophub/internal/domain"
	"shophub/internal/payment"
	"shophub/internal/repository"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OrderLine asks for quantity units of one product.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// CheckoutInput describes an order to place. With no lines the buyer's cart
// is checked out and emptied once payment is initialized.
type CheckoutInput struct {
	Lines           []OrderLine
	ShippingAddress *domain.ShippingAddress
	PaymentMethod   string
	MomoNumber      string
}

// PaymentSession points the buyer at the hosted checkout for an order.
type PaymentSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
	OrderID          string `json:"orderId"`
}

// PaymentOptions configures checkout.
type PaymentOptions struct {
	ShippingFee domain.Money
	Currency    string
	CallbackURL string
}

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	cart     repository.CartRepository
	gateway  payment.Gateway
	opts     PaymentOptions
	logger   *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	cart repository.CartRepository,
	gateway payment.Gateway,
	opts PaymentOptions,
	logger *zap.Logger,
) *OrderService {
	if opts.Currency == "" {
		opts.Currency = "GHS"
	}
	return &OrderService{
		orders:   orders,
		products: products,
		cart:     cart,
		gateway:  gateway,
		opts:     opts,
		logger:   logger,
	}
}

// List returns the user's own orders, newest first.
func (s *OrderService) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.List(ctx, "")
}

// ListForSeller returns the orders visible on a seller dashboard.
// TODO: narrow to orders containing one of sellerID's products once order
// lines carry the seller.
func (s *OrderService) ListForSeller(ctx context.Context, sellerID string) ([]*domain.Order, error) {
	return s.ListAll(ctx)
}

// Create places a pending order for actor, snapshotting current product
// prices. The total is the subtotal plus the flat shipping fee.
func (s *OrderService) Create(ctx context.Context, actor *domain.User, input CheckoutInput) (*domain.Order, error) {
	lines := input.Lines
	if len(lines) == 0 {
		cartItems, err := s.cart.ListCartItems(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		lines = lo.Map(cartItems, func(item *domain.CartItemWithProduct, _ int) OrderLine {
			return OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
		})
	}
	if len(lines) == 0 {
		return nil, invalid("items", "order must contain at least one item")
	}

	items := make(domain.OrderItems, 0, len(lines))
	for _, line := range lines {
		item, err := s.snapshot(ctx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	order := domain.Order{
		UserID:          actor.ID,
		Status:          domain.OrderStatusPending,
		TotalAmount:     items.Subtotal().Add(s.opts.ShippingFee),
		PaymentStatus:   lo.ToPtr(domain.PaymentStatusPending),
		ShippingAddress: input.ShippingAddress,
		Items:           items,
	}
	if input.PaymentMethod != "" {
		order.PaymentMethod = lo.ToPtr(input.PaymentMethod)
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", created.ID),
		zap.String("user_id", actor.ID),
		zap.String("total", created.TotalAmount.String()),
	)
	return created, nil
}

func (s *OrderService) snapshot(ctx context.Context, line OrderLine) (domain.OrderItem, error) {
	if line.Quantity < 1 {
		return domain.OrderItem{}, invalid("quantity", "must be at least 1")
	}

	product, err := s.products.GetProductByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.OrderItem{}, invalid("productId", fmt.Sprintf("product %s does not exist", line.ProductID))
		}
		return domain.OrderItem{}, fmt.Errorf("failed to get product: %w", err)
	}
	if product.Status != domain.ProductStatusActive {
		return domain.OrderItem{}, invalid("productId", fmt.Sprintf("%s is not available", product.Name))
	}
	if line.Quantity > product.Stock {
		return domain.OrderItem{}, invalid("quantity", fmt.Sprintf("only %d of %s in stock", product.Stock, product.Name))
	}

	return domain.OrderItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  line.Quantity,
		Image:     product.FirstImage(),
	}, nil
}

// UpdateStatus moves an order to status. Sellers and admins may set any
// status; buyers may only cancel their own pending orders.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.User, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of pending, paid, shipped, delivered, cancelled")
	}

	if actor.Role == domain.RoleBuyer {
		order, err := s.orders.GetOrderByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		if order.UserID != actor.ID {
			return nil, repository.ErrOrderNotFound
		}
		if status != domain.OrderStatusCancelled || order.Status != domain.OrderStatusPending {
			return nil, ErrForbidden
		}
	}

	order, err := s.orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.ID),
	)
	return order, nil
}

// InitializePayment places the order and opens a checkout session for it.
// The order stays pending if the gateway call fails; nothing is rolled back.
func (s *OrderService) InitializePayment(ctx context.Context, actor *domain.User, input CheckoutInput) (*PaymentSession, error) {
	fromCart := len(input.Lines) == 0

	order, err := s.Create(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{"orderId": order.ID}
	if input.MomoNumber != "" {
		metadata["momoNumber"] = input.MomoNumber
	}

	result, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Reference:   order.ID,
		Email:       actor.Email,
		Amount:      order.TotalAmount,
		Currency:    s.opts.Currency,
		Channels:    payment.ChannelsFor(input.PaymentMethod),
		Metadata:    metadata,
		CallbackURL: s.opts.CallbackURL,
	})
	if err != nil {
		s.logger.Error("Payment initialization failed", zap.String("order_id", order.ID), zap.Error(err))
		if _, markErr := s.orders.UpdateOrderPayment(ctx, order.ID, domain.OrderPayment{
			Reference:     order.ID,
			PaymentStatus: domain.PaymentStatusFailed,
			Status:        domain.OrderStatusPending,
		}); markErr != nil {
			s.logger.Error("Failed to record payment failure", zap.String("order_id", order.ID), zap.Error(markErr))
		}
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	reference := result.Reference
	if reference == "" {
		reference = order.ID
	}
	if _, err := s.orders.UpdateOrderPayment(ctx, order.ID, domain.OrderPayment{
		Reference:     reference,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.OrderStatusPending,
	}); err != nil {
		return nil, fmt.Errorf("failed to record payment reference: %w", err)
	}

	if fromCart {
		if err := s.cart.ClearCart(ctx, actor.ID); err != nil {
			s.logger.Error("Failed to clear cart after checkout", zap.String("user_id", actor.ID), zap.Error(err))
		}
	}

	return &PaymentSession{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        reference,
		OrderID:          order.ID,
	}, nil
}

// VerifyPayment asks the gateway about a reference and records the outcome
// on the order. A successful payment moves a pending order to paid. Orders
// whose payment already succeeded are returned unchanged.
func (s *OrderService) VerifyPayment(ctx context.Context, actor *domain.User, reference string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		return nil, repository.ErrOrderNotFound
	}
	if order.PaymentSettled() {
		return order, nil
	}
	if order.PaymentReference != nil && *order.PaymentReference != "" {
		reference = *order.PaymentReference
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	paid := result.Paid
	if paid && !result.Amount.IsZero() && !result.Amount.Equal(order.TotalAmount) {
		s.logger.Warn("Paid amount does not match order total",
			zap.String("order_id", order.ID),
			zap.String("paid", result.Amount.String()),
			zap.String("total", order.TotalAmount.String()),
		)
		paid = false
	}

	outcome := domain.OrderPayment{
		Reference:     reference,
		PaymentStatus: domain.PaymentStatusFailed,
		Status:        order.Status,
	}
	if paid {
		outcome.PaymentStatus = domain.PaymentStatusSuccess
		if order.Status == domain.OrderStatusPending {
			outcome.Status = domain.OrderStatusPaid
		}
	}

	updated, err := s.orders.UpdateOrderPayment(ctx, order.ID, outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("Payment verified",
		zap.String("order_id", order.ID),
		zap.String("payment_status", outcome.PaymentStatus),
	)
	return updated, nil
}
