package grpc

import (
	"context"
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/service"
)

type ReportService interface {
	// Location resolves a timezone name, falling back to the default zone
	// when name is empty.
	Location(name string) (*time.Location, error)
	Averages(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error)
	PeriodComparison(ctx context.Context, q service.ReportQuery) (service.PeriodComparison, error)
	DailySeries(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error)
	CenterStats(ctx context.Context, q service.ReportQuery) ([]aggregation.CenterStats, error)
}
