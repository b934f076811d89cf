package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus describes the payment lifecycle, independent of order status.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodCard PaymentMethod = "card"
)

// Pricing constants. Amounts are integer minor currency units.
const (
	DefaultShippingFee int64 = 30000
	TaxRatePercent     int64 = 10
)

// orderTransitions is the allowed next-state table. Delivered and cancelled
// are terminal: no transition out of them is permitted.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// Order is materialized from a cart at checkout. The item snapshot and all
// amounts are immutable after creation, even if product prices later change.
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	OrderNumber     string        `json:"orderNumber" db:"order_number"`
	UserID          uuid.UUID     `json:"userId" db:"user_id"`
	Items           []OrderItem   `json:"items"`
	Subtotal        int64         `json:"subtotal" db:"subtotal"`
	ShippingFee     int64         `json:"shippingFee" db:"shipping_fee"`
	Tax             int64         `json:"tax" db:"tax"`
	TotalAmount     int64         `json:"totalAmount" db:"total_amount"`
	ShippingAddress string        `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" db:"payment_status"`
	Status          OrderStatus   `json:"status" db:"status"`
	Note            string        `json:"note,omitempty" db:"note"`
	PaidAt          *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a denormalized line item snapshot carried by an order.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   uuid.UUID `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	UnitPrice   int64     `json:"unitPrice" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
}

// Tax computes the order tax for a subtotal in minor units.
func Tax(subtotal int64) int64 {
	return subtotal * TaxRatePercent / 100
}

// CreateOrderRequest is the checkout payload. Line items come from the
// caller's cart, not the request.
type CreateOrderRequest struct {
	ShippingAddress string        `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Note            string        `json:"note,omitempty"`
}

// UpdateOrderStatusRequest is the admin payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}
