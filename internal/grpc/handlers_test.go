package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/grpc/mocks"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var (
	testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
)

func validRequest() *pb.ReportRequest {
	return &pb.ReportRequest{
		StartDate: timestamppb.New(testStart),
		EndDate:   timestamppb.New(testEnd),
		CenterId:  "mdy",
		Timezone:  "Asia/Yangon",
	}
}

// TestNewGRPCHandlers tests the constructor
func TestNewGRPCHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockReports := &mocks.MockReportService{}
		mockCache := &mocks.MockCacher{}

		handlers := NewGRPCHandlers(mockReports, mockCache, zap.NewNop(), 5*time.Minute)

		assert.Equal(t, mockReports, handlers.reports)
		assert.Equal(t, mockCache, handlers.cache)
		assert.Equal(t, 5*time.Minute, handlers.cacheTTL)
		assert.NotNil(t, handlers.logger)
	})

	t.Run("nil report service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGRPCHandlers(nil, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		})
	})

	t.Run("nil cache and logger fall back", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockReportService{}, nil, nil, 0)

		assert.Equal(t, cache.Nop{}, handlers.cache)
		assert.Equal(t, defaultCacheDuration, handlers.cacheTTL)
		assert.NotNil(t, handlers.logger)
	})
}

// TestRequestValidation tests request validation through the handler methods
func TestRequestValidation(t *testing.T) {
	var seen service.ReportQuery
	mockReports := &mocks.MockReportService{
		AveragesFunc: func(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error) {
			seen = q
			return service.AverageRatings{}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

	t.Run("valid request is passed through", func(t *testing.T) {
		resp, err := handlers.GetAverages(context.Background(), validRequest())

		require.NoError(t, err)
		assert.NotNil(t, resp)
		assert.True(t, seen.From.Equal(testStart))
		assert.True(t, seen.To.Equal(testEnd))
		assert.Equal(t, "mdy", seen.CenterID)
		assert.Equal(t, "Asia/Yangon", seen.Timezone)
	})

	t.Run("same start and end dates are allowed", func(t *testing.T) {
		req := &pb.ReportRequest{StartDate: timestamppb.New(testStart), EndDate: timestamppb.New(testStart)}

		_, err := handlers.GetAverages(context.Background(), req)

		assert.NoError(t, err)
	})

	cases := []struct {
		name    string
		req     *pb.ReportRequest
		message string
	}{
		{name: "nil request", req: nil, message: "start and end dates are required"},
		{name: "missing end", req: &pb.ReportRequest{StartDate: timestamppb.New(testStart)}, message: "start and end dates are required"},
		{name: "end before start", req: &pb.ReportRequest{StartDate: timestamppb.New(testEnd), EndDate: timestamppb.New(testStart)}, message: "end date must not be before start date"},
		{name: "out of range timestamp", req: &pb.ReportRequest{StartDate: &timestamppb.Timestamp{Seconds: -1 << 62}, EndDate: timestamppb.New(testEnd)}, message: "invalid start date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := handlers.GetAverages(context.Background(), tc.req)

			assert.Nil(t, resp)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

// TestNormalizeKey tests cache key generation
func TestNormalizeKey(t *testing.T) {
	q := service.ReportQuery{From: testStart, To: testEnd, CenterID: "mdy", Timezone: "UTC"}

	t.Run("exact bounds", func(t *testing.T) {
		key := normalizeKey(cacheKeyAverages, q)

		assert.Equal(t, "grpc:averages:mdy:UTC:1735689600000000000:1738367999000000000", key)
	})

	t.Run("bounds are not truncated", func(t *testing.T) {
		later := q
		later.From = q.From.Add(time.Hour)

		assert.NotEqual(t, normalizeKey(cacheKeySeries, q), normalizeKey(cacheKeySeries, later))
	})

	t.Run("all centers share a key", func(t *testing.T) {
		all, empty := q, q
		all.CenterID = "ALL"
		empty.CenterID = ""

		assert.Equal(t, normalizeKey(cacheKeyCenterStats, all), normalizeKey(cacheKeyCenterStats, empty))
	})

	t.Run("same instant in another zone", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		shifted := q
		shifted.From = q.From.In(loc)

		assert.Equal(t, normalizeKey(cacheKeyComparison, q), normalizeKey(cacheKeyComparison, shifted))
	})
}

// TestCacheKeyUsesResolvedZone tests that an empty zone and the named default
// zone read the same cache entry
func TestCacheKeyUsesResolvedZone(t *testing.T) {
	yangon, err := time.LoadLocation("Asia/Yangon")
	require.NoError(t, err)

	var keys []string
	mockCache := &mocks.MockCacher{
		GetFunc: func(ctx context.Context, key string, dest any) error {
			keys = append(keys, key)
			return cache.ErrMiss
		},
		SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
			return nil
		},
	}
	var zones []string
	mockReports := &mocks.MockReportService{
		LocationFunc: func(name string) (*time.Location, error) {
			if name == "" {
				return yangon, nil
			}
			return time.LoadLocation(name)
		},
		AveragesFunc: func(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error) {
			zones = append(zones, q.Timezone)
			return service.AverageRatings{}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, mockCache, zap.NewNop(), time.Minute)

	implicit := validRequest()
	implicit.Timezone = ""
	_, err = handlers.GetAverages(context.Background(), implicit)
	require.NoError(t, err)

	_, err = handlers.GetAverages(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Contains(t, keys[0], ":Asia/Yangon:")
	assert.Equal(t, []string{"Asia/Yangon", "Asia/Yangon"}, zones)

	t.Run("unknown zone is rejected before the cache", func(t *testing.T) {
		keys = nil
		bad := validRequest()
		bad.Timezone = "Nowhere/Town"

		_, err := handlers.GetAverages(context.Background(), bad)

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Empty(t, keys)
	})
}

// TestHandleError tests error handling and status code mapping
func TestHandleError(t *testing.T) {
	handlers := &GRPCHandlers{logger: zap.NewNop()}

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handlers.handleError(ctx, "op", errors.New("some error"))

		assert.Equal(t, codes.Canceled, status.Code(err))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		err := handlers.handleError(ctx, "op", errors.New("some error"))

		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	})

	cases := []struct {
		name     string
		err      error
		code     codes.Code
		contains string
	}{
		{name: "invalid input", err: fmtErr(service.ErrInvalidInput, "unknown timezone"), code: codes.InvalidArgument, contains: "unknown timezone"},
		{name: "not found", err: service.ErrNotFound, code: codes.NotFound, contains: "not found"},
		{name: "storage failure", err: fmtErr(service.ErrStorageFailure, "disk I/O"), code: codes.Internal, contains: "database error"},
		{name: "unknown error", err: errors.New("boom"), code: codes.Internal, contains: "op failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handlers.handleError(context.Background(), "op", tc.err)

			assert.Equal(t, tc.code, status.Code(err))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}

	t.Run("storage details stay server side", func(t *testing.T) {
		err := handlers.handleError(context.Background(), "op", fmtErr(service.ErrStorageFailure, "password=secret"))

		assert.NotContains(t, err.Error(), "secret")
	})
}

func fmtErr(sentinel error, detail string) error {
	return errors.Join(sentinel, errors.New(detail))
}

func TestGetAverages(t *testing.T) {
	avg := aggregation.ComputeAverages(nil)
	avg.Service, avg.Condition, avg.Fee, avg.Duration, avg.Composite, avg.Count, avg.Excluded = 4.5, 4, 3.5, 3, 3.8, 2, 1

	mockReports := &mocks.MockReportService{
		AveragesFunc: func(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error) {
			return service.AverageRatings{Averages: avg, Categories: aggregation.CategoryBreakdown(avg)}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

	resp, err := handlers.GetAverages(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, &pb.CategoryAverages{Service: 4.5, Condition: 4, Fee: 3.5, Duration: 3, Composite: 3.8, Count: 2, ExcludedCount: 1}, resp.Averages)
	require.Len(t, resp.Categories, 4)
	assert.Equal(t, &pb.CategoryScore{Category: "Service", Average: 4.5, Tier: "Excellent"}, resp.Categories[0])
	assert.Equal(t, "Good", resp.Categories[3].Tier)
}

func TestGetPeriodComparison(t *testing.T) {
	mockReports := &mocks.MockReportService{
		PeriodComparisonFunc: func(ctx context.Context, q service.ReportQuery) (service.PeriodComparison, error) {
			return service.PeriodComparison{Comparison: aggregation.Comparison{
				Current:        aggregation.PeriodSummary{Count: 10, AverageRating: 4, ResponseRate: 48, Satisfaction: 80, Tier: aggregation.TierExcellent},
				Previous:       aggregation.PeriodSummary{Count: 5, AverageRating: 2, ResponseRate: 24, Satisfaction: 40},
				CountChangePct: 100, RatingChangePct: 100, ResponseRateChangePct: 100, SatisfactionChangePct: 100,
				RatingDiff: 2,
			}}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

	resp, err := handlers.GetPeriodComparison(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, &pb.PeriodSummary{Count: 10, AverageRating: 4, ResponseRate: 48, Satisfaction: 80, Tier: "Excellent"}, resp.Current)
	assert.Equal(t, "Needs Improvement", resp.Previous.Tier)
	assert.Equal(t, 100.0, resp.CountChangePct)
	assert.Equal(t, 2.0, resp.RatingDiff)
}

func TestGetDailySeriesAndCenterStats(t *testing.T) {
	mockReports := &mocks.MockReportService{
		DailySeriesFunc: func(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error) {
			return []aggregation.SeriesPoint{{Date: "2025-01-01", Label: "Jan 01", Count: 3, AvgRating: 3}}, nil
		},
		CenterStatsFunc: func(ctx context.Context, q service.ReportQuery) ([]aggregation.CenterStats, error) {
			return []aggregation.CenterStats{{ID: "mdy", Name: "1.Care MDY", Location: "Mandalay", ResponseRate: 67, Satisfaction: 80, Tier: aggregation.TierExcellent}}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

	series, err := handlers.GetDailySeries(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []*pb.SeriesPoint{{Date: "2025-01-01", Label: "Jan 01", Count: 3, AvgRating: 3}}, series.Points)

	stats, err := handlers.GetCenterStats(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, stats.Centers, 1)
	assert.Equal(t, int32(67), stats.Centers[0].ResponseRate)
	assert.Equal(t, "Excellent", stats.Centers[0].Tier)
	assert.NotNil(t, stats.Centers[0].Averages)
}

func TestServiceErrors(t *testing.T) {
	mockReports := &mocks.MockReportService{
		DailySeriesFunc: func(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error) {
			return nil, errors.Join(service.ErrInvalidInput, aggregation.ErrInvalidInterval)
		},
		CenterStatsFunc: func(ctx context.Context, q service.ReportQuery) ([]aggregation.CenterStats, error) {
			return nil, errors.Join(service.ErrStorageFailure, errors.New("locked"))
		},
	}
	var sets int
	mockCache := &mocks.MockCacher{
		SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
			sets++
			return nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, mockCache, zap.NewNop(), time.Minute)

	_, err := handlers.GetDailySeries(context.Background(), validRequest())
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = handlers.GetCenterStats(context.Background(), validRequest())
	assert.Equal(t, codes.Internal, status.Code(err))

	assert.Zero(t, sets)
}

// jsonCache stores JSON like the redis cache does.
type jsonCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *jsonCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *jsonCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *jsonCache) Close() error { return nil }

func (c *jsonCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// TestCachedResponses tests that responses survive a JSON cache round trip
func TestCachedResponses(t *testing.T) {
	store := &jsonCache{data: map[string][]byte{}}
	mockReports := &mocks.MockReportService{
		AveragesFunc: func(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error) {
			avg := aggregation.Averages{Service: 5, Condition: 5, Fee: 5, Duration: 5, Composite: 5, Count: 1}
			return service.AverageRatings{Averages: avg, Categories: aggregation.CategoryBreakdown(avg)}, nil
		},
	}
	handlers := NewGRPCHandlers(mockReports, store, zap.NewNop(), time.Minute)

	first, err := handlers.GetAverages(context.Background(), validRequest())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return store.len() == 1 }, time.Second, 10*time.Millisecond)

	mockReports.AveragesFunc = nil
	second, err := handlers.GetAverages(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, first, second)
}
