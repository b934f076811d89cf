package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// statsRepository implements the StatsRepository interface using PostgreSQL.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// CountByStatus counts orders per status.
func (r *statsRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM orders GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders by status")
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status count")
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status counts")
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// RevenueSince sums total_amount and counts orders created at or after the
// cutoff. Cancelled orders do not contribute revenue.
func (r *statsRepository) RevenueSince(ctx context.Context, since time.Time) (int64, int, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND status <> 'cancelled'
	`

	var revenue int64
	var orders int
	if err := r.pool.QueryRow(ctx, query, since).Scan(&revenue, &orders); err != nil {
		r.logger.Error().Err(err).Time("since", since).Msg("failed to query revenue")
		return 0, 0, fmt.Errorf("failed to query revenue: %w", err)
	}

	return revenue, orders, nil
}

// RecentOrders retrieves the n most recent orders without their items; the
// dashboard only shows summary rows.
func (r *statsRepository) RecentOrders(ctx context.Context, n int) ([]model.Order, error) {
	if n <= 0 {
		n = 5
	}

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query recent orders")
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating recent orders")
		return nil, fmt.Errorf("error iterating recent orders: %w", err)
	}

	return orders, nil
}

// SalesSeries buckets revenue and order counts by calendar unit. The unit
// comes from model.BucketUnit, never from raw user input.
func (r *statsRepository) SalesSeries(ctx context.Context, since time.Time, unit string) ([]model.SalesBucket, error) {
	switch unit {
	case "hour", "day", "month":
	default:
		return nil, fmt.Errorf("invalid bucket unit: %s", unit)
	}

	query := fmt.Sprintf(`
		SELECT date_trunc('%s', created_at) AS bucket, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND status <> 'cancelled'
		GROUP BY bucket
		ORDER BY bucket
	`, unit)

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		r.logger.Error().Err(err).Str("unit", unit).Msg("failed to query sales series")
		return nil, fmt.Errorf("failed to query sales series: %w", err)
	}
	defer rows.Close()

	var series []model.SalesBucket
	for rows.Next() {
		var b model.SalesBucket
		if err := rows.Scan(&b.Bucket, &b.OrderCount, &b.Revenue); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan sales bucket")
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		series = append(series, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating sales series")
		return nil, fmt.Errorf("error iterating sales series: %w", err)
	}

	return series, nil
}
