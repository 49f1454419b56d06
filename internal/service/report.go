package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/repository/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dbTimeout = 5 * time.Second

	dashboardRecentLimit = 5
)

// ReportService composes stored feedback with the aggregation engine.
type ReportService struct {
	feedback FeedbackRepository
	centers  CenterRepository
	logger   *zap.Logger
	observer Observer
	opts     aggregation.Options
	location *time.Location
	now      func() time.Time
}

type ReportOption func(*ReportService)

func WithAggregationOptions(opts aggregation.Options) ReportOption {
	return func(s *ReportService) { s.opts = opts }
}

// WithDefaultLocation sets the zone used when a query names none.
func WithDefaultLocation(loc *time.Location) ReportOption {
	return func(s *ReportService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func WithReportObserver(o Observer) ReportOption {
	return func(s *ReportService) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewReportService(feedback FeedbackRepository, centers CenterRepository, logger *zap.Logger, opts ...ReportOption) *ReportService {
	if feedback == nil || centers == nil {
		panic("nil repository provided to NewReportService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		feedback: feedback,
		centers:  centers,
		logger:   logger.Named("report-service"),
		observer: nopObserver{},
		opts:     aggregation.DefaultOptions(),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location resolves an IANA zone name, falling back to the service default
// for an empty name.
func (s *ReportService) Location(name string) (*time.Location, error) {
	return resolveLocation(name, s.location)
}

func resolveLocation(name string, fallback *time.Location) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalidf("unknown timezone %q", name)
	}
	return loc, nil
}

// window resolves the query interval. Missing bounds default to a window of
// aggregation.DefaultPeriodDays days ending now.
func (s *ReportService) window(q ReportQuery) (Window, error) {
	to := q.To
	if to.IsZero() {
		to = s.now()
	}
	from := q.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -aggregation.DefaultPeriodDays)
	}
	if to.Before(from) {
		return Window{}, invalidf("end %s is before start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return Window{From: from, To: to}, nil
}

// previousWindow is the equally long interval ending just before w.
func previousWindow(w Window) Window {
	duration := w.To.Sub(w.From)
	prevTo := w.From.Add(-time.Nanosecond)
	return Window{From: prevTo.Add(-duration), To: prevTo}
}

func centerID(id string) string {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, "all") {
		return ""
	}
	return id
}

func (s *ReportService) records(ctx context.Context, w Window, center string) ([]models.Feedback, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	records, err := s.feedback.List(dbCtx, models.FeedbackFilter{CenterID: center, From: w.From, To: w.To})
	if err != nil {
		s.logger.Error("failed to load feedback", zap.Time("from", w.From), zap.Time("to", w.To), zap.Error(err))
		return nil, storageError("list feedback", err)
	}
	return records, nil
}

func (s *ReportService) listCenters(ctx context.Context) ([]models.ServiceCenter, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	centers, err := s.centers.List(dbCtx)
	if err != nil {
		s.logger.Error("failed to load service centers", zap.Error(err))
		return nil, storageError("list service centers", err)
	}
	return centers, nil
}

// scope returns the centers a query covers: the named one or all of them.
func (s *ReportService) scope(ctx context.Context, center string) ([]models.ServiceCenter, error) {
	if center == "" {
		return s.listCenters(ctx)
	}
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c, err := s.centers.Get(dbCtx, center)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalidf("unknown service center %q", center)
		}
		return nil, storageError("get service center", err)
	}
	return []models.ServiceCenter{c}, nil
}

func (s *ReportService) observeExcluded(n int) {
	if n > 0 {
		s.observer.RecordsExcluded(n)
		s.logger.Warn("malformed feedback excluded from aggregation", zap.Int("count", n))
	}
}

// Averages returns per-category and composite averages over the query window.
func (s *ReportService) Averages(ctx context.Context, q ReportQuery) (AverageRatings, error) {
	w, err := s.window(q)
	if err != nil {
		return AverageRatings{}, err
	}
	records, err := s.records(ctx, w, centerID(q.CenterID))
	if err != nil {
		return AverageRatings{}, err
	}

	avg := aggregation.ComputeAverages(records)
	s.observeExcluded(avg.Excluded)
	return AverageRatings{Averages: avg, Categories: aggregation.CategoryBreakdown(avg)}, nil
}

// PeriodComparison compares the query window with the equally long window
// immediately preceding it.
func (s *ReportService) PeriodComparison(ctx context.Context, q ReportQuery) (PeriodComparison, error) {
	w, err := s.window(q)
	if err != nil {
		return PeriodComparison{}, err
	}
	prev := previousWindow(w)
	center := centerID(q.CenterID)

	var current, previous []models.Feedback
	var centers []models.ServiceCenter
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = s.records(gctx, w, center)
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.records(gctx, prev, center)
		return err
	})
	g.Go(func() (err error) {
		centers, err = s.scope(gctx, center)
		return err
	})
	if err := g.Wait(); err != nil {
		return PeriodComparison{}, err
	}

	cmp := aggregation.Compare(
		aggregation.Period{Records: current, Days: aggregation.PeriodDays(w.From, w.To), Centers: len(centers)},
		aggregation.Period{Records: previous, Days: aggregation.PeriodDays(prev.From, prev.To), Centers: len(centers)},
		s.opts,
	)
	s.observeExcluded(cmp.Current.Excluded)

	s.logger.Debug("computed period comparison",
		zap.Time("from", w.From),
		zap.Time("to", w.To),
		zap.Int("current", cmp.Current.Count),
		zap.Int("previous", cmp.Previous.Count))

	return PeriodComparison{Current: w, Previous: prev, Comparison: cmp}, nil
}

// DailySeries returns one point per calendar day of the window in the
// query's timezone.
func (s *ReportService) DailySeries(ctx context.Context, q ReportQuery) ([]aggregation.SeriesPoint, error) {
	loc, err := s.Location(q.Timezone)
	if err != nil {
		return nil, err
	}
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, w, centerID(q.CenterID))
	if err != nil {
		return nil, err
	}

	points, err := aggregation.DailySeries(records, w.From, w.To, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return points, nil
}

// CenterStats returns statistics for every center in scope, including those
// without feedback.
func (s *ReportService) CenterStats(ctx context.Context, q ReportQuery) ([]aggregation.CenterStats, error) {
	w, err := s.window(q)
	if err != nil {
		return nil, err
	}
	center := centerID(q.CenterID)

	var records []models.Feedback
	var centers []models.ServiceCenter
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.records(gctx, w, center)
		return err
	})
	g.Go(func() (err error) {
		centers, err = s.scope(gctx, center)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregation.ByCenter(records, centers, aggregation.PeriodDays(w.From, w.To), s.opts), nil
}

// Report assembles everything the reports page shows for one window.
func (s *ReportService) Report(ctx context.Context, q ReportQuery) (Report, error) {
	loc, err := s.Location(q.Timezone)
	if err != nil {
		return Report{}, err
	}
	w, err := s.window(q)
	if err != nil {
		return Report{}, err
	}
	prev := previousWindow(w)
	center := centerID(q.CenterID)

	var current, previous []models.Feedback
	var centers []models.ServiceCenter
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = s.records(gctx, w, center)
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.records(gctx, prev, center)
		return err
	})
	g.Go(func() (err error) {
		centers, err = s.scope(gctx, center)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	series, err := aggregation.DailySeries(current, w.From, w.To, loc)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	days := aggregation.PeriodDays(w.From, w.To)
	cur := aggregation.Period{Records: current, Days: days, Centers: len(centers)}
	avg := aggregation.ComputeAverages(current)
	s.observeExcluded(avg.Excluded)

	return Report{
		Window:     w,
		Timezone:   loc.String(),
		CenterID:   center,
		Summary:    aggregation.Summarize(cur, s.opts),
		Averages:   avg,
		Categories: aggregation.CategoryBreakdown(avg),
		Centers:    aggregation.ByCenter(current, centers, days, s.opts),
		Previous:   prev,
		Comparison: aggregation.Compare(cur,
			aggregation.Period{Records: previous, Days: aggregation.PeriodDays(prev.From, prev.To), Centers: len(centers)},
			s.opts),
		Series:       series,
		Distribution: aggregation.Distribution(current),
	}, nil
}

// monthWindow is the calendar month containing t in loc.
func monthWindow(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return Window{From: start, To: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// Dashboard compares the current calendar month with the previous one and
// adds all-time totals and the most recent submissions. TotalFeedback counts
// the records behind AverageRating; malformed rows are in ExcludedFeedback.
func (s *ReportService) Dashboard(ctx context.Context, timezone string) (Dashboard, error) {
	loc, err := s.Location(timezone)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now()
	month := monthWindow(now, loc)
	prevMonth := monthWindow(month.From.Add(-time.Nanosecond), loc)

	var all, current, previous, recent []models.Feedback
	var centers []models.ServiceCenter
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = s.records(gctx, Window{}, "")
		return err
	})
	g.Go(func() (err error) {
		current, err = s.records(gctx, month, "")
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.records(gctx, prevMonth, "")
		return err
	})
	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(gctx, dbTimeout)
		defer cancel()
		var err error
		recent, err = s.feedback.List(dbCtx, models.FeedbackFilter{Limit: dashboardRecentLimit})
		if err != nil {
			return storageError("list recent feedback", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		centers, err = s.listCenters(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	series, err := aggregation.DailySeries(current, month.From, month.To, loc)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	avg := aggregation.ComputeAverages(all)
	s.observeExcluded(avg.Excluded)

	// the running month is only measured up to now
	cmp := aggregation.Compare(
		aggregation.Period{Records: current, Days: aggregation.PeriodDays(month.From, now), Centers: len(centers)},
		aggregation.Period{Records: previous, Days: aggregation.PeriodDays(prevMonth.From, prevMonth.To), Centers: len(centers)},
		s.opts,
	)

	return Dashboard{
		TotalFeedback:      avg.Count,
		ExcludedFeedback:   avg.Excluded,
		AverageRating:      avg.Composite,
		Averages:           avg,
		Categories:         aggregation.CategoryBreakdown(avg),
		Recent:             recent,
		CurrentMonth:       month,
		CurrentMonthCount:  cmp.Current.Count,
		PreviousMonthCount: cmp.Previous.Count,
		MonthlyRating:      cmp.Current.AverageRating,
		RatingDiff:         cmp.RatingDiff,
		CountGrowth:        cmp.CountChangePct,
		Comparison:         cmp,
		Series:             series,
	}, nil
}
