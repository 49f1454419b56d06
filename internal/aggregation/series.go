package aggregation

import (
	"fmt"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
)

const (
	// MaxSeriesDays bounds the number of points a single series may hold.
	MaxSeriesDays = 366

	dateLayout  = "2006-01-02"
	labelLayout = "Jan 02"
)

type SeriesPoint struct {
	Date      string  `json:"date"`
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// DailySeries returns one point per calendar day in [start, end], inclusive,
// in chronological order. Days are calendar days in loc (UTC when nil), which
// is resolved once for the whole call. Records outside the interval and
// malformed records are ignored.
func DailySeries(records []models.Feedback, start, end time.Time, loc *time.Location) ([]SeriesPoint, error) {
	if loc == nil {
		loc = time.UTC
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidInterval,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	first := civilDate(start.In(loc))
	last := civilDate(end.In(loc))
	days := int(last.Sub(first).Hours()/24) + 1
	if days > MaxSeriesDays {
		return nil, fmt.Errorf("%w: %d days exceeds the limit of %d", ErrInvalidInterval, days, MaxSeriesDays)
	}

	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		index[first.AddDate(0, 0, i).Format(dateLayout)] = i
	}

	buckets := make([]tally, days)
	for _, r := range records {
		i, ok := index[r.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		buckets[i].add(r)
	}

	points := make([]SeriesPoint, days)
	for i := range points {
		day := first.AddDate(0, 0, i)
		points[i] = SeriesPoint{
			Date:      day.Format(dateLayout),
			Label:     day.Format(labelLayout),
			Count:     buckets[i].count,
			AvgRating: round(buckets[i].compositeMean(), averagePrecision),
		}
	}
	return points, nil
}

// civilDate drops the clock and zone of t, keeping its calendar date as UTC
// midnight so that day arithmetic is unaffected by DST transitions.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
