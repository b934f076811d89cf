package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue item. Prices are integer minor currency
// units. AverageRating and TotalReviews are derived from the reviews table
// and recomputed whenever a review is created, updated or deleted. ImageID
// identifies the embedding record held for the current image, empty when
// none is registered.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	Price         int64      `json:"price" db:"price"`
	Stock         int        `json:"stock" db:"stock"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	ImageKey      string     `json:"imageKey,omitempty" db:"image_key"`
	ImageID       string     `json:"-" db:"image_id"`
	Active        bool       `json:"active" db:"active"`
	AverageRating float64    `json:"averageRating" db:"average_rating"`
	TotalReviews  int        `json:"totalReviews" db:"total_reviews"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// Category groups products for browsing and constraint-based search.
type Category struct {
	ID     uuid.UUID `json:"id" db:"id"`
	Name   string    `json:"name" db:"name"`
	Active bool      `json:"active" db:"active"`
}

// ProductFilter narrows catalogue listings. PriceCeiling/PriceFloor are
// exclusive of zero values (nil means no bound).
type ProductFilter struct {
	Category   string
	CategoryID *uuid.UUID
	ActiveOnly bool
	PriceFloor *int64
	PriceCeil  *int64
	Limit      int
	Offset     int
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Stock       int        `json:"stock"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	ImageKey    string     `json:"imageKey,omitempty"`
}

// UpdateProductRequest is the admin payload for editing a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Price       *int64     `json:"price,omitempty"`
	Stock       *int       `json:"stock,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	ImageKey    *string    `json:"imageKey,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}
