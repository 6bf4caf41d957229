package domain

import "time"

// CartItem is a product in a user's cart
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CartItemWithProduct is a cart item with its product attached.
type CartItemWithProduct struct {
	CartItem
	Product *Product `json:"product"`
}

// CartSubtotal sums price × quantity across the cart in exact decimal
// arithmetic. Items whose product is missing contribute nothing.
func CartSubtotal(items []CartItemWithProduct) Money {
	total := Money{}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Times(item.Quantity))
	}
	return total
}

// WishlistItem marks a product a user wants to keep track of.
type WishlistItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// WishlistItemWithProduct is a wishlist entry with its product attached.
type WishlistItemWithProduct struct {
	WishlistItem
	Product *ProductWithDetails `json:"product"`
}
