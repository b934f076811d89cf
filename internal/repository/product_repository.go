package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, description, price, stock, category_id, image_key, image_id, active, average_rating, total_reviews, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.ImageKey, &p.ImageID, &p.Active, &p.AverageRating, &p.TotalReviews,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// List retrieves products matching the filter with pagination support.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argn := 1

	if filter.ActiveOnly {
		query += ` AND active = TRUE`
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(` AND category_id = $%d`, argn)
		args = append(args, *filter.CategoryID)
		argn++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category_id IN (SELECT id FROM categories WHERE LOWER(name) = LOWER($%d))`, argn)
		args = append(args, filter.Category)
		argn++
	}
	if filter.PriceFloor != nil {
		query += fmt.Sprintf(` AND price >= $%d`, argn)
		args = append(args, *filter.PriceFloor)
		argn++
	}
	if filter.PriceCeil != nil {
		query += fmt.Sprintf(` AND price <= $%d`, argn)
		args = append(args, *filter.PriceCeil)
		argn++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argn, argn+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products keyed by ID.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	products := make(map[uuid.UUID]model.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock, category_id, image_key, image_id, active, average_rating, total_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.CategoryID, product.ImageKey, product.ImageID, product.Active,
		product.AverageRating, product.TotalReviews, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Update persists the current state of a product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category_id = $6,
		    image_key = $7, active = $8, updated_at = $9
		WHERE id = $1
	`

	product.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.CategoryID, product.ImageKey, product.Active,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// SetImageID records the embedding record identifier registered for the
// product's current image. The general Update path deliberately leaves
// image_id alone so an admin edit cannot clobber a concurrent registration.
func (r *productRepository) SetImageID(ctx context.Context, id uuid.UUID, imageID string) error {
	query := `UPDATE products SET image_id = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, imageID); err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to set product image id")
		return fmt.Errorf("failed to set product image id: %w", err)
	}

	return nil
}

// StockTx reads a product's current stock within a transaction.
func (r *productRepository) StockTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	query := `SELECT stock FROM products WHERE id = $1`

	var stock int
	if err := tx.QueryRow(ctx, query, id).Scan(&stock); err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query stock")
		return 0, fmt.Errorf("failed to query stock: %w", err)
	}

	return stock, nil
}

// DecrementStock atomically decrements stock within a transaction. The
// WHERE clause guards against overselling: concurrent checkouts serialize
// on the product row and the second one finds the stock already gone.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Int("qty", qty).Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RestoreStock increments stock within a transaction.
func (r *productRepository) RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, qty); err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Int("qty", qty).Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	return nil
}

// LowStock retrieves active products at or below the stock threshold.
func (r *productRepository) LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active = TRUE AND stock <= $1
		ORDER BY stock, name
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		r.logger.Error().Err(err).Int("threshold", threshold).Msg("failed to query low-stock products")
		return nil, fmt.Errorf("failed to query low-stock products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
