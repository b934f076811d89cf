package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const reviewColumns = `id, product_id, user_id, rating, content, anonymous, created_at, updated_at`

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func scanReview(row pgx.Row, rv *model.Review) error {
	return row.Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Content,
		&rv.Anonymous, &rv.CreatedAt, &rv.UpdatedAt,
	)
}

// Create inserts a review within the transaction. The unique constraint on
// (product_id, user_id) is the authoritative duplicate guard: concurrent
// submissions by the same user collapse to a single row, the loser getting
// model.ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, content, anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		review.ID, review.ProductID, review.UserID, review.Rating,
		review.Content, review.Anonymous, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn().
				Str("product_id", review.ProductID.String()).
				Str("user_id", review.UserID.String()).
				Msg("duplicate review rejected by constraint")
			return model.ErrDuplicateReview
		}
		r.logger.Error().Err(err).Str("review_id", review.ID.String()).Msg("failed to insert review")
		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

// Update persists review changes within the transaction.
func (r *reviewRepository) Update(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, content = $3, anonymous = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, review.ID, review.Rating, review.Content, review.Anonymous, review.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", review.ID.String()).Msg("failed to update review")
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}

	return nil
}

// Delete removes a review within the transaction.
func (r *reviewRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}

	return nil
}

// GetByID retrieves a review by ID. Returns nil if not found.
func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	var rv model.Review
	err := scanReview(r.pool.QueryRow(ctx, query, id), &rv)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}

	return &rv, nil
}

// GetByProductAndUser retrieves the user's review of a product, if any.
func (r *reviewRepository) GetByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 AND user_id = $2`

	var rv model.Review
	err := scanReview(r.pool.QueryRow(ctx, query, productID, userID), &rv)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Str("user_id", userID.String()).
			Msg("failed to query review by product and user")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}

	return &rv, nil
}

// ListByProduct retrieves reviews with pagination and sorting. Sort columns
// are mapped from a fixed set, never interpolated from raw input.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, sort model.ReviewSort) ([]model.Review, error) {
	column := "created_at"
	if sort.By == "rating" {
		column = "rating"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	limit := sort.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY %s %s, id LIMIT $2 OFFSET $3`,
		column, direction,
	)

	rows, err := r.pool.Query(ctx, query, productID, limit, sort.Offset)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := scanReview(rows, &rv); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// RecomputeProductRating refreshes the product's derived aggregate fields
// within the transaction. With no reviews left both fields reset to zero.
func (r *reviewRepository) RecomputeProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	query := `
		UPDATE products
		SET average_rating = COALESCE((SELECT ROUND(AVG(rating), 1) FROM reviews WHERE product_id = $1), 0),
		    total_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, productID); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to recompute product rating")
		return fmt.Errorf("failed to recompute product rating: %w", err)
	}

	return nil
}

// ReviewContents returns review texts for a product, newest first.
func (r *reviewRepository) ReviewContents(ctx context.Context, productID uuid.UUID, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT content FROM reviews WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query review contents")
		return nil, fmt.Errorf("failed to query review contents: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review content")
			return nil, fmt.Errorf("failed to scan review content: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review contents")
		return nil, fmt.Errorf("error iterating review contents: %w", err)
	}

	return contents, nil
}
