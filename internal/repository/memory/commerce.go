package memory

import (
	"context"
	"time"

	"shophub/internal/domain"
	"shophub/internal/repository"

	"github.com/samber/lo"
)

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append(domain.OrderItems{}, o.Items...)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		c.ShippingAddress = &addr
	}
	return &c
}

func (s *Storage) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := lo.FilterMap(lo.Values(s.orders), func(o *domain.Order, _ int) (*domain.Order, bool) {
		return cloneOrder(o), userID == "" || o.UserID == userID
	})
	newestFirst(s, orders, func(o *domain.Order) (string, time.Time) { return o.ID, o.CreatedAt })
	return orders, nil
}

func (s *Storage) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *Storage) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.newID()
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.Items == nil {
		order.Items = domain.OrderItems{}
	}
	s.orders[order.ID] = cloneOrder(&order)

	return cloneOrder(&order), nil
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = now()
	return cloneOrder(order), nil
}

func (s *Storage) UpdateOrderPayment(ctx context.Context, id string, payment domain.OrderPayment) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	reference, paymentStatus := payment.Reference, payment.PaymentStatus
	order.PaymentReference = &reference
	order.PaymentStatus = &paymentStatus
	order.Status = payment.Status
	order.UpdatedAt = now()
	return cloneOrder(order), nil
}

func (s *Storage) ListCartItems(ctx context.Context, userID string) ([]*domain.CartItemWithProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := lo.FilterMap(lo.Values(s.cartItems), func(item *domain.CartItem, _ int) (*domain.CartItemWithProduct, bool) {
		if item.UserID != userID {
			return nil, false
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			return nil, false
		}
		return &domain.CartItemWithProduct{CartItem: *item, Product: cloneProduct(product)}, true
	})
	newestFirst(s, items, func(i *domain.CartItemWithProduct) (string, time.Time) { return i.ID, i.CreatedAt })
	return items, nil
}

func (s *Storage) GetCartItem(ctx context.Context, id string) (*domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	c := *item
	return &c, nil
}

// AddToCart increments the existing line for the same product instead of adding a second one.
func (s *Storage) AddToCart(ctx context.Context, item domain.CartItem) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := lo.Find(lo.Values(s.cartItems), func(c *domain.CartItem) bool {
		return c.UserID == item.UserID && c.ProductID == item.ProductID
	})
	if ok {
		existing.Quantity += item.Quantity
		c := *existing
		return &c, nil
	}

	item.ID = s.newID()
	item.CreatedAt = now()
	stored := item
	s.cartItems[item.ID] = &stored
	return &item, nil
}

func (s *Storage) UpdateCartItem(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	c := *item
	return &c, nil
}

func (s *Storage) RemoveFromCart(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return false, nil
	}
	delete(s.cartItems, id)
	return true, nil
}

func (s *Storage) ClearCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.UserID == userID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *Storage) ListWishlistItems(ctx context.Context, userID string) ([]*domain.WishlistItemWithProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := lo.FilterMap(lo.Values(s.wishlistItems), func(item *domain.WishlistItem, _ int) (*domain.WishlistItemWithProduct, bool) {
		if item.UserID != userID {
			return nil, false
		}
		entry := &domain.WishlistItemWithProduct{WishlistItem: *item}
		if product, ok := s.products[item.ProductID]; ok {
			entry.Product = s.detailsLocked(product)
		}
		return entry, true
	})
	newestFirst(s, items, func(i *domain.WishlistItemWithProduct) (string, time.Time) { return i.ID, i.CreatedAt })
	return items, nil
}

// AddToWishlist returns the existing entry when the product is already wished for.
func (s *Storage) AddToWishlist(ctx context.Context, item domain.WishlistItem) (*domain.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := lo.Find(lo.Values(s.wishlistItems), func(w *domain.WishlistItem) bool {
		return w.UserID == item.UserID && w.ProductID == item.ProductID
	})
	if ok {
		c := *existing
		return &c, nil
	}

	item.ID = s.newID()
	item.CreatedAt = now()
	stored := item
	s.wishlistItems[item.ID] = &stored
	return &item, nil
}

func (s *Storage) RemoveFromWishlist(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wishlistItems[id]; !ok {
		return false, nil
	}
	delete(s.wishlistItems, id)
	return true, nil
}
