package service

import (
	"context"

	"storefront/internal/aiclient"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines operations for product management.
type CatalogService interface {
	// List retrieves products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create adds a product to the catalogue (admin). The product image, if
	// any, is registered with the AI collaborator best-effort.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update edits a product (admin). Nil request fields are left unchanged.
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)

	// LowStock retrieves active products at or below the stock threshold.
	LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error)
}

// CartService defines operations on a user's cart. Every operation takes
// the acting user's ID explicitly.
type CartService interface {
	// Get returns the user's cart joined with live product data. Never nil:
	// a missing cart is an empty view.
	Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error)

	// AddItem adds quantity of a product, accumulating with any existing
	// line and snapshotting the current price.
	AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartView, error)

	// UpdateItem sets a line's quantity. Zero removes the line; a positive
	// quantity re-validates stock and refreshes the price snapshot.
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*model.CartView, error)

	// RemoveItem drops a line entirely regardless of quantity.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.CartView, error)

	// Clear removes all lines.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines the order lifecycle operations.
type OrderService interface {
	// Create materializes the user's cart into an order: stock is
	// re-validated and decremented, totals computed, and the cart cleared,
	// all within one transaction.
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// GetByID retrieves an order. Only the owner or an admin may read it.
	GetByID(ctx context.Context, orderID, userID uuid.UUID, role model.Role) (*model.Order, error)

	// ListByUser retrieves the user's orders, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// List retrieves orders matching the filter (admin).
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus performs an order status transition (admin). Moving to
	// delivered on a cash-on-delivery order completes its payment; moving
	// to cancelled restores stock.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error)

	// Cancel cancels an order from pending or processing, restoring stock
	// for every line item.
	Cancel(ctx context.Context, orderID, userID uuid.UUID, role model.Role) (*model.Order, error)

	// ConfirmPayment records a successful payment for the order through the
	// mocked gateway.
	ConfirmPayment(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
}

// ReviewService defines review operations, all gated on purchase receipt.
type ReviewService interface {
	// Create adds a review. The author must have a delivered order
	// containing the product and no prior review of it.
	Create(ctx context.Context, userID, productID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error)

	// Update edits the author's own review.
	Update(ctx context.Context, reviewID, userID uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error)

	// Delete removes a review. Authors may delete their own; admins any.
	Delete(ctx context.Context, reviewID, userID uuid.UUID, role model.Role) error

	// List retrieves a product's reviews for display, masking anonymous
	// authors.
	List(ctx context.Context, productID uuid.UUID, sort model.ReviewSort) ([]model.ReviewView, error)
}

// StatsService defines the read-only admin dashboard rollups.
type StatsService interface {
	// Dashboard computes the dashboard stats for a reporting period.
	Dashboard(ctx context.Context, period model.StatsPeriod) (*model.DashboardStats, error)

	// Sales computes the sales-over-time series for a reporting period.
	Sales(ctx context.Context, period model.StatsPeriod) ([]model.SalesBucket, error)
}

// ImageSearchHit is a catalogue product matched by image similarity.
type ImageSearchHit struct {
	Product    model.Product `json:"product"`
	Similarity float64       `json:"similarity"`
}

// QuerySearchResult is the outcome of a natural-language catalogue search.
type QuerySearchResult struct {
	Products   []model.Product     `json:"products"`
	Constraint aiclient.Constraint `json:"constraint"`
}

// SearchService defines the AI-assisted catalogue search operations.
type SearchService interface {
	// ByImage finds products similar to a query image, filtered by the
	// similarity threshold and deduplicated per product.
	ByImage(ctx context.Context, image []byte, topK int) ([]ImageSearchHit, error)

	// ByImageKey runs ByImage against a stored product image.
	ByImageKey(ctx context.Context, key string, topK int) ([]ImageSearchHit, error)

	// ByQuery extracts a constraint from a natural-language query and
	// filters the catalogue with it.
	ByQuery(ctx context.Context, query string) (*QuerySearchResult, error)

	// Compare analyzes 2-4 products through their reviews.
	Compare(ctx context.Context, productIDs []uuid.UUID) (*aiclient.CompareResult, error)
}
