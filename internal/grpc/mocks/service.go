package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/service"
)

// MockReportService is a function-based mock of the handlers' ReportService.
type MockReportService struct {
	LocationFunc         func(name string) (*time.Location, error)
	AveragesFunc         func(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error)
	PeriodComparisonFunc func(ctx context.Context, q service.ReportQuery) (service.PeriodComparison, error)
	DailySeriesFunc      func(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error)
	CenterStatsFunc      func(ctx context.Context, q service.ReportQuery) ([]aggregation.CenterStats, error)
}

// Location defaults to time.LoadLocation, which maps "" to UTC.
func (m *MockReportService) Location(name string) (*time.Location, error) {
	if m.LocationFunc != nil {
		return m.LocationFunc(name)
	}
	return time.LoadLocation(name)
}

func (m *MockReportService) Averages(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error) {
	if m.AveragesFunc != nil {
		return m.AveragesFunc(ctx, q)
	}
	return service.AverageRatings{}, errors.New("AveragesFunc not implemented")
}

func (m *MockReportService) PeriodComparison(ctx context.Context, q service.ReportQuery) (service.PeriodComparison, error) {
	if m.PeriodComparisonFunc != nil {
		return m.PeriodComparisonFunc(ctx, q)
	}
	return service.PeriodComparison{}, errors.New("PeriodComparisonFunc not implemented")
}

func (m *MockReportService) DailySeries(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error) {
	if m.DailySeriesFunc != nil {
		return m.DailySeriesFunc(ctx, q)
	}
	return nil, errors.New("DailySeriesFunc not implemented")
}

func (m *MockReportService) CenterStats(ctx context.Context, q service.ReportQuery) ([]aggregation.CenterStats, error) {
	if m.CenterStatsFunc != nil {
		return m.CenterStatsFunc(ctx, q)
	}
	return nil, errors.New("CenterStatsFunc not implemented")
}
