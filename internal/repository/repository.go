package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByIDs retrieves users keyed by ID for batch lookups.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products matching the filter with pagination support.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products keyed by ID.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update persists the current state of a product. Does not touch the
	// registered image id; use SetImageID for that.
	Update(ctx context.Context, product *model.Product) error

	// SetImageID records the embedding record identifier for the product's
	// current image. An empty id clears the registration.
	SetImageID(ctx context.Context, id uuid.UUID, imageID string) error

	// StockTx reads a product's current stock within a transaction.
	StockTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error)

	// DecrementStock atomically decrements stock within a transaction,
	// refusing to go below zero. Returns false when stock was insufficient.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error)

	// RestoreStock increments stock within a transaction (cancellation path).
	RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error

	// LowStock retrieves active products at or below the stock threshold.
	LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating it lazily on first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetByUser returns the user's cart or nil when none exists.
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetLines returns the cart's items joined with live product data.
	GetLines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error)

	// GetItems returns the raw cart items.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem inserts a line or, when one exists for the product,
	// replaces its quantity and price snapshot.
	UpsertItem(ctx context.Context, item *model.CartItem) error

	// RemoveItem deletes a line. Removing an absent line is not an error.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// Clear removes all lines from a cart.
	Clear(ctx context.Context, cartID uuid.UUID) error

	// ClearTx removes all lines within a checkout transaction.
	ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order and its items within the transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDTx retrieves an order with its items, locking the order row
	// for the duration of the transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// List retrieves orders matching the filter, most recent first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus persists a status change within the transaction. The
	// paidAt timestamp is written only when non-nil.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, paymentStatus model.PaymentStatus, paidAt *time.Time) error

	// HasDeliveredProduct reports whether the user has a delivered order
	// containing the product (the purchase-and-receipt gate).
	HasDeliveredProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a review within the transaction. Returns
	// model.ErrDuplicateReview when the (product, user) pair already exists.
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) error

	// Update persists review changes within the transaction.
	Update(ctx context.Context, tx pgx.Tx, review *model.Review) error

	// Delete removes a review within the transaction.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// GetByID retrieves a review by ID. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)

	// GetByProductAndUser retrieves the user's review of a product, if any.
	GetByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*model.Review, error)

	// ListByProduct retrieves reviews with pagination and sorting.
	ListByProduct(ctx context.Context, productID uuid.UUID, sort model.ReviewSort) ([]model.Review, error)

	// RecomputeProductRating refreshes the product's derived average_rating
	// and total_reviews within the transaction.
	RecomputeProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error

	// ReviewContents returns review texts for a product, newest first, for
	// the comparison pipeline.
	ReviewContents(ctx context.Context, productID uuid.UUID, limit int) ([]string, error)
}

// StatsRepository defines the read-only aggregation queries backing the
// admin dashboard.
type StatsRepository interface {
	// CountByStatus counts orders per status.
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error)

	// RevenueSince sums total_amount and counts orders created at or after
	// the cutoff, excluding cancelled orders.
	RevenueSince(ctx context.Context, since time.Time) (revenue int64, orders int, err error)

	// RecentOrders retrieves the n most recent orders.
	RecentOrders(ctx context.Context, n int) ([]model.Order, error)

	// SalesSeries buckets revenue and order counts by the calendar unit
	// ("hour", "day" or "month") from the cutoff onward, excluding
	// cancelled orders.
	SalesSeries(ctx context.Context, since time.Time, unit string) ([]model.SalesBucket, error)
}
