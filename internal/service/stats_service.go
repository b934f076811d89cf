package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Dashboard defaults.
const (
	lowStockThreshold = 10
	lowStockLimit     = 20
	recentOrderCount  = 5
)

// statsService implements StatsService.
type statsService struct {
	statsRepo   repository.StatsRepository
	productRepo repository.ProductRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(
	statsRepo repository.StatsRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		statsRepo:   statsRepo,
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "stats").Logger(),
	}
}

// Dashboard computes the dashboard stats for a reporting period.
func (s *statsService) Dashboard(ctx context.Context, period model.StatsPeriod) (*model.DashboardStats, error) {
	if !model.ValidStatsPeriod(period) {
		return nil, model.NewInvalidInputError("Period must be day, week, month or year")
	}

	counts, err := s.statsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	since := model.PeriodStart(period, s.now())
	revenue, orders, err := s.statsRepo.RevenueSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var avg int64
	if orders > 0 {
		avg = revenue / int64(orders)
	}

	lowStock, err := s.productRepo.LowStock(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}

	recent, err := s.statsRepo.RecentOrders(ctx, recentOrderCount)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		OrderCounts:  counts,
		Revenue:      revenue,
		AverageOrder: avg,
		LowStock:     lowStock,
		RecentOrders: recent,
		Period:       period,
	}, nil
}

// Sales computes the sales-over-time series for a reporting period.
func (s *statsService) Sales(ctx context.Context, period model.StatsPeriod) ([]model.SalesBucket, error) {
	if !model.ValidStatsPeriod(period) {
		return nil, model.NewInvalidInputError("Period must be day, week, month or year")
	}

	since := model.PeriodStart(period, s.now())
	return s.statsRepo.SalesSeries(ctx, since, model.BucketUnit(period))
}
