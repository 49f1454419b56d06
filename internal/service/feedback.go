package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/repository/models"
	"go.uber.org/zap"
)

const (
	MaxCommentLength = 2000

	DefaultPageSize = 10
	MaxPageSize     = 100

	DefaultRecentLimit = 5
	MaxRecentLimit     = 50

	exportDateLayout = "Jan 2, 2006"
	exportTimeLayout = "3:04 PM"
)

var exportHeader = []string{
	"Date", "Time", "Service Center", "Location",
	"Service Rating", "Condition Rating", "Fee Rating", "Duration Rating", "Comment",
}

// FeedbackService accepts submissions and serves the feedback list.
type FeedbackService struct {
	feedback      FeedbackRepository
	centers       CenterRepository
	logger        *zap.Logger
	observer      Observer
	defaultCenter string
	location      *time.Location
	now           func() time.Time
}

func NewFeedbackService(feedback FeedbackRepository, centers CenterRepository, logger *zap.Logger, defaultCenter string, loc *time.Location, observer Observer) *FeedbackService {
	if feedback == nil || centers == nil {
		panic("nil repository provided to NewFeedbackService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &FeedbackService{
		feedback:      feedback,
		centers:       centers,
		logger:        logger.Named("feedback-service"),
		observer:      observer,
		defaultCenter: defaultCenter,
		location:      loc,
		now:           time.Now,
	}
}

func validateRating(name string, v *int) (int, error) {
	if v == nil {
		return 0, invalidf("%s is required", name)
	}
	if *v < aggregation.MinRating || *v > aggregation.MaxRating {
		return 0, invalidf("%s must be between %d and %d, got %d", name, aggregation.MinRating, aggregation.MaxRating, *v)
	}
	return *v, nil
}

// Submit validates req and writes exactly one feedback record.
func (s *FeedbackService) Submit(ctx context.Context, req SubmitRequest) (models.Feedback, error) {
	f := models.Feedback{
		ServiceCenterID: strings.TrimSpace(req.CenterID),
		Comment:         strings.TrimSpace(req.Comment),
	}
	if f.ServiceCenterID == "" {
		f.ServiceCenterID = s.defaultCenter
	}

	var err error
	if f.ServiceRating, err = validateRating("serviceRating", req.ServiceRating); err != nil {
		return models.Feedback{}, err
	}
	if f.ConditionRating, err = validateRating("conditionRating", req.ConditionRating); err != nil {
		return models.Feedback{}, err
	}
	if f.FeeRating, err = validateRating("feeRating", req.FeeRating); err != nil {
		return models.Feedback{}, err
	}
	if f.DurationRating, err = validateRating("durationRating", req.DurationRating); err != nil {
		return models.Feedback{}, err
	}
	if n := utf8.RuneCountInString(f.Comment); n > MaxCommentLength {
		return models.Feedback{}, invalidf("comment is %d characters, the limit is %d", n, MaxCommentLength)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	center, err := s.centers.Get(dbCtx, f.ServiceCenterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Feedback{}, invalidf("unknown service center %q", f.ServiceCenterID)
		}
		return models.Feedback{}, storageError("get service center", err)
	}

	f.CreatedAt = s.now()
	if err := s.feedback.Create(dbCtx, &f); err != nil {
		s.logger.Error("failed to store feedback", zap.String("center", f.ServiceCenterID), zap.Error(err))
		return models.Feedback{}, storageError("create feedback", err)
	}
	f.ServiceCenter = &center

	s.observer.FeedbackSubmitted(f.ServiceCenterID)
	s.logger.Info("feedback submitted",
		zap.String("id", f.ID),
		zap.String("center", f.ServiceCenterID))

	return f, nil
}

func (q ListQuery) filter() models.FeedbackFilter {
	return models.FeedbackFilter{
		CenterID:  centerID(q.CenterID),
		From:      q.From,
		To:        q.To,
		MinRating: q.MinRating,
		Query:     strings.TrimSpace(q.Query),
	}
}

func (q ListQuery) validate() error {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return invalidf("end %s is before start %s", q.To.Format(time.RFC3339), q.From.Format(time.RFC3339))
	}
	if q.MinRating < 0 || q.MinRating > aggregation.MaxRating {
		return invalidf("minRating must be between 0 and %d", aggregation.MaxRating)
	}
	return nil
}

// List returns one page of feedback, newest first. Page and PageSize are
// clamped to sane values rather than rejected.
func (s *FeedbackService) List(ctx context.Context, q ListQuery) (FeedbackPage, error) {
	if err := q.validate(); err != nil {
		return FeedbackPage{}, err
	}
	page := max(q.Page, 1)
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	filter := q.filter()

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	total, err := s.feedback.Count(dbCtx, filter)
	if err != nil {
		return FeedbackPage{}, storageError("count feedback", err)
	}

	filter.Limit = size
	filter.Offset = (page - 1) * size
	items, err := s.feedback.List(dbCtx, filter)
	if err != nil {
		return FeedbackPage{}, storageError("list feedback", err)
	}
	if items == nil {
		items = []models.Feedback{}
	}

	return FeedbackPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// Recent returns the newest limit records; limit is clamped to
// [1, MaxRecentLimit] and defaults to DefaultRecentLimit.
func (s *FeedbackService) Recent(ctx context.Context, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	items, err := s.feedback.List(dbCtx, models.FeedbackFilter{Limit: limit})
	if err != nil {
		return nil, storageError("list recent feedback", err)
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

func (s *FeedbackService) Centers(ctx context.Context) ([]models.ServiceCenter, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	centers, err := s.centers.List(dbCtx)
	if err != nil {
		return nil, storageError("list service centers", err)
	}
	if centers == nil {
		centers = []models.ServiceCenter{}
	}
	return centers, nil
}

// ExportFilename names an export by the current date in the default zone.
func (s *FeedbackService) ExportFilename() string {
	return "feedback-list-" + s.now().In(s.location).Format("2006-01-02") + ".csv"
}

// Export writes every record matching q as CSV, newest first. Pagination
// fields of q are ignored.
func (s *FeedbackService) Export(ctx context.Context, w io.Writer, q ListQuery) (int, error) {
	if err := q.validate(); err != nil {
		return 0, err
	}
	loc, err := resolveLocation(q.Timezone, s.location)
	if err != nil {
		return 0, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	items, err := s.feedback.List(dbCtx, q.filter())
	if err != nil {
		return 0, storageError("list feedback for export", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range items {
		if err := cw.Write(exportRow(f, loc)); err != nil {
			return 0, fmt.Errorf("write csv row %s: %w", f.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("feedback exported", zap.Int("rows", len(items)))
	return len(items), nil
}

func exportRow(f models.Feedback, loc *time.Location) []string {
	created := f.CreatedAt.In(loc)
	name, location := f.ServiceCenterID, ""
	if f.ServiceCenter != nil {
		name, location = f.ServiceCenter.Name, f.ServiceCenter.Location
	}
	return []string{
		created.Format(exportDateLayout),
		created.Format(exportTimeLayout),
		name,
		location,
		ratingCell(f.ServiceRating),
		ratingCell(f.ConditionRating),
		ratingCell(f.FeeRating),
		ratingCell(f.DurationRating),
		f.Comment,
	}
}

func ratingCell(v int) string {
	if v == models.MissingRating {
		return ""
	}
	return strconv.Itoa(v)
}
