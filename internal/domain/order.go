package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Payment statuses recorded on an order.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// OrderItem is a snapshot of a product taken when the order was placed.
// It is copied by value so later product edits never rewrite history.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() Money {
	return i.Price.Times(i.Quantity)
}

// OrderItems is stored as a JSON array column.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]OrderItem(items))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (items *OrderItems) Scan(src interface{}) error {
	*items = OrderItems{}
	return scanJSON(src, (*[]OrderItem)(items))
}

// Subtotal sums all line totals.
func (items OrderItems) Subtotal() Money {
	total := Money{}
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ShippingAddress is stored as an opaque JSON document.
type ShippingAddress struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// Order represents a buyer's order
type Order struct {
	ID               string           `json:"id" db:"id"`
	UserID           string           `json:"userId" db:"user_id"`
	Status           OrderStatus      `json:"status" db:"status"`
	TotalAmount      Money            `json:"totalAmount" db:"total_amount"`
	PaymentReference *string          `json:"paymentReference" db:"payment_reference"`
	PaymentStatus    *string          `json:"paymentStatus" db:"payment_status"`
	PaymentMethod    *string          `json:"paymentMethod,omitempty" db:"payment_method"`
	ShippingAddress  *ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	Items            OrderItems       `json:"items" db:"items"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// PaymentSettled reports whether the order's payment has already succeeded.
func (o *Order) PaymentSettled() bool {
	return o.PaymentStatus != nil && *o.PaymentStatus == PaymentStatusSuccess
}

// OrderPayment records the outcome of a payment attempt on an order.
type OrderPayment struct {
	Reference     string
	PaymentStatus string
	Status        OrderStatus
}
