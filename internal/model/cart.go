package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user mutable collection of line items. One cart per user;
// created lazily on first add, cleared (not deleted) on successful checkout.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is a line item: at most one per (cart, product). PriceSnapshot is
// the product price captured when the line was added or last updated.
type CartItem struct {
	ID            uuid.UUID `json:"-" db:"id"`
	CartID        uuid.UUID `json:"-" db:"cart_id"`
	ProductID     uuid.UUID `json:"productId" db:"product_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	PriceSnapshot int64     `json:"priceSnapshot" db:"price_snapshot"`
}

// CartLine joins a cart item with live product data for display.
type CartLine struct {
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	CurrentPrice  int64     `json:"currentPrice"`
	Stock         int       `json:"stock"`
	Quantity      int       `json:"quantity"`
	PriceSnapshot int64     `json:"priceSnapshot"`
}

// CartView is the cart shape returned to callers. Never nil: an absent cart
// is rendered as an empty view.
type CartView struct {
	Items    []CartLine `json:"items"`
	Subtotal int64      `json:"subtotal"`
}

// EmptyCartView returns the shape used when the user has no cart yet.
func EmptyCartView() *CartView {
	return &CartView{Items: []CartLine{}}
}

// AddCartItemRequest is the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest sets the quantity of an existing line. Zero removes it.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
