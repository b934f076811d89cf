package model

import "time"

// StatsPeriod selects the reporting window for dashboard queries.
type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "day"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
	PeriodYear  StatsPeriod = "year"
)

// ValidStatsPeriod reports whether p is a known reporting period.
func ValidStatsPeriod(p StatsPeriod) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// PeriodStart returns the inclusive lower bound of the reporting window.
// Day, month and year start at the current calendar boundary; week is the
// trailing 7x24h window.
func PeriodStart(p StatsPeriod, now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	}
	return now
}

// BucketUnit maps a period to the date_trunc unit used for the sales series.
func BucketUnit(p StatsPeriod) string {
	switch p {
	case PeriodDay:
		return "hour"
	case PeriodWeek, PeriodMonth:
		return "day"
	case PeriodYear:
		return "month"
	}
	return "day"
}

// DashboardStats is the admin dashboard rollup.
type DashboardStats struct {
	OrderCounts  map[OrderStatus]int `json:"orderCounts"`
	Revenue      int64               `json:"revenue"`
	AverageOrder int64               `json:"averageOrderValue"`
	LowStock     []Product           `json:"lowStockProducts"`
	RecentOrders []Order             `json:"recentOrders"`
	Period       StatsPeriod         `json:"period"`
}

// SalesBucket is one point of the sales-over-time series.
type SalesBucket struct {
	Bucket     time.Time `json:"bucket"`
	OrderCount int       `json:"orderCount"`
	Revenue    int64     `json:"revenue"`
}
