package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCacheDuration = time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyAverages    CacheKeyType = "grpc:averages"
	cacheKeyComparison  CacheKeyType = "grpc:period_comparison"
	cacheKeySeries      CacheKeyType = "grpc:daily_series"
	cacheKeyCenterStats CacheKeyType = "grpc:center_stats"
)

type GRPCHandlers struct {
	pb.UnimplementedFeedbackReportsServer
	reports  ReportService
	cache    cache.Store
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. A nil store disables
// caching.
func NewGRPCHandlers(reports ReportService, store cache.Store, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if reports == nil {
		panic("nil ReportService provided to NewGRPCHandlers")
	}
	if store == nil {
		store = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		reports:  reports,
		cache:    store,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
	}
}

func (s *GRPCHandlers) parseAndValidate(req *pb.ReportRequest) (service.ReportQuery, error) {
	if req.GetStartDate() == nil || req.GetEndDate() == nil {
		return service.ReportQuery{}, status.Error(codes.InvalidArgument, "start and end dates are required")
	}
	if err := req.GetStartDate().CheckValid(); err != nil {
		return service.ReportQuery{}, status.Errorf(codes.InvalidArgument, "invalid start date: %v", err)
	}
	if err := req.GetEndDate().CheckValid(); err != nil {
		return service.ReportQuery{}, status.Errorf(codes.InvalidArgument, "invalid end date: %v", err)
	}

	q := service.ReportQuery{
		From:     req.GetStartDate().AsTime(),
		To:       req.GetEndDate().AsTime(),
		CenterID: strings.TrimSpace(req.GetCenterId()),
		Timezone: strings.TrimSpace(req.GetTimezone()),
	}
	if q.To.Before(q.From) {
		return service.ReportQuery{}, status.Error(codes.InvalidArgument, "end date must not be before start date")
	}

	// an empty zone and the named default zone must share cache entries
	loc, err := s.reports.Location(q.Timezone)
	if err != nil {
		return service.ReportQuery{}, status.Errorf(codes.InvalidArgument, "invalid timezone %q", q.Timezone)
	}
	q.Timezone = loc.String()
	return q, nil
}

// normalizeKey identifies a query exactly; "all" and an empty center share
// an entry. q.Timezone is expected to be resolved already.
func normalizeKey(prefix CacheKeyType, q service.ReportQuery) string {
	center := q.CenterID
	if center == "" || strings.EqualFold(center, "all") {
		center = "all"
	}
	return fmt.Sprintf("%s:%s:%s:%d:%d", prefix, center, q.Timezone, q.From.UnixNano(), q.To.UnixNano())
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed", op)
	}
}

func (s *GRPCHandlers) GetAverages(ctx context.Context, req *pb.ReportRequest) (*pb.AveragesResponse, error) {
	q, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	resp, err := cache.FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeyAverages, q), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (*pb.AveragesResponse, error) {
			avg, err := s.reports.Averages(fetchCtx, q)
			if err != nil {
				return nil, err
			}
			return &pb.AveragesResponse{
				Averages:   toProtoAverages(avg.Averages),
				Categories: toProtoCategories(avg.Categories),
			}, nil
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetAverages", err)
	}
	return resp, nil
}

func (s *GRPCHandlers) GetPeriodComparison(ctx context.Context, req *pb.ReportRequest) (*pb.PeriodComparisonResponse, error) {
	q, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	resp, err := cache.FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeyComparison, q), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (*pb.PeriodComparisonResponse, error) {
			pc, err := s.reports.PeriodComparison(fetchCtx, q)
			if err != nil {
				return nil, err
			}
			cmp := pc.Comparison
			return &pb.PeriodComparisonResponse{
				Current:               toProtoSummary(cmp.Current),
				Previous:              toProtoSummary(cmp.Previous),
				CountChangePct:        cmp.CountChangePct,
				RatingChangePct:       cmp.RatingChangePct,
				ResponseRateChangePct: cmp.ResponseRateChangePct,
				SatisfactionChangePct: cmp.SatisfactionChangePct,
				RatingDiff:            cmp.RatingDiff,
			}, nil
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetPeriodComparison", err)
	}
	return resp, nil
}

func (s *GRPCHandlers) GetDailySeries(ctx context.Context, req *pb.ReportRequest) (*pb.DailySeriesResponse, error) {
	q, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	resp, err := cache.FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeySeries, q), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (*pb.DailySeriesResponse, error) {
			points, err := s.reports.DailySeries(fetchCtx, q)
			if err != nil {
				return nil, err
			}
			out := make([]*pb.SeriesPoint, len(points))
			for i, p := range points {
				out[i] = &pb.SeriesPoint{Date: p.Date, Label: p.Label, Count: int64(p.Count), AvgRating: p.AvgRating}
			}
			return &pb.DailySeriesResponse{Points: out}, nil
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetDailySeries", err)
	}
	return resp, nil
}

func (s *GRPCHandlers) GetCenterStats(ctx context.Context, req *pb.ReportRequest) (*pb.CenterStatsResponse, error) {
	q, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	resp, err := cache.FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeyCenterStats, q), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (*pb.CenterStatsResponse, error) {
			stats, err := s.reports.CenterStats(fetchCtx, q)
			if err != nil {
				return nil, err
			}
			out := make([]*pb.CenterStats, len(stats))
			for i, c := range stats {
				out[i] = &pb.CenterStats{
					Id:           c.ID,
					Name:         c.Name,
					Location:     c.Location,
					Averages:     toProtoAverages(c.Averages),
					ResponseRate: int32(c.ResponseRate),
					Satisfaction: c.Satisfaction,
					Tier:         c.Tier.String(),
				}
			}
			return &pb.CenterStatsResponse{Centers: out}, nil
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetCenterStats", err)
	}
	return resp, nil
}

func toProtoAverages(a aggregation.Averages) *pb.CategoryAverages {
	return &pb.CategoryAverages{
		Service:       a.Service,
		Condition:     a.Condition,
		Fee:           a.Fee,
		Duration:      a.Duration,
		Composite:     a.Composite,
		Count:         int64(a.Count),
		ExcludedCount: int64(a.Excluded),
	}
}

func toProtoCategories(cats []aggregation.CategoryAverage) []*pb.CategoryScore {
	out := make([]*pb.CategoryScore, len(cats))
	for i, c := range cats {
		out[i] = &pb.CategoryScore{Category: string(c.Category), Average: c.Average, Tier: c.Tier.String()}
	}
	return out
}

func toProtoSummary(p aggregation.PeriodSummary) *pb.PeriodSummary {
	return &pb.PeriodSummary{
		Count:         int64(p.Count),
		ExcludedCount: int64(p.Excluded),
		AverageRating: p.AverageRating,
		ResponseRate:  int32(p.ResponseRate),
		Satisfaction:  p.Satisfaction,
		Tier:          p.Tier.String(),
	}
}
