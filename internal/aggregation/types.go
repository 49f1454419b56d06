// Package aggregation reduces feedback records to the statistics shown on the
// dashboard and report pages. Every function is pure: no I/O, no logging and
// no package-level mutable state.
package aggregation

import (
	"errors"

	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/montanaflynn/stats"
)

const (
	MinRating = 0
	MaxRating = 5

	// satisfactionScale maps a 0-5 composite onto 0-100.
	satisfactionScale = 100.0 / MaxRating

	averagePrecision = 1
)

var ErrInvalidInterval = errors.New("invalid interval")

type Category string

const (
	CategoryService   Category = "Service"
	CategoryCondition Category = "Condition"
	CategoryFee       Category = "Fee"
	CategoryDuration  Category = "Duration"
)

// Categories lists the rating categories in the order of models.Feedback.Ratings.
var Categories = [4]Category{CategoryService, CategoryCondition, CategoryFee, CategoryDuration}

// Valid reports whether every rating of f is within [MinRating, MaxRating].
func Valid(f models.Feedback) bool {
	for _, r := range f.Ratings() {
		if r < MinRating || r > MaxRating {
			return false
		}
	}
	return true
}

// tally accumulates integer rating sums so that averages are derived from raw
// values exactly once.
type tally struct {
	count    int
	excluded int
	sums     [4]int
}

func (t *tally) add(f models.Feedback) {
	if !Valid(f) {
		t.excluded++
		return
	}
	t.count++
	for i, r := range f.Ratings() {
		t.sums[i] += r
	}
}

func (t tally) categoryMean(i int) float64 {
	if t.count == 0 {
		return 0
	}
	return float64(t.sums[i]) / float64(t.count)
}

// compositeMean is the mean of per-record composites, which for complete
// records equals the mean of the four category means.
func (t tally) compositeMean() float64 {
	if t.count == 0 {
		return 0
	}
	total := t.sums[0] + t.sums[1] + t.sums[2] + t.sums[3]
	return float64(total) / float64(len(t.sums)*t.count)
}

func tallyOf(records []models.Feedback) tally {
	var t tally
	for _, r := range records {
		t.add(r)
	}
	return t
}

func round(x float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	r, err := stats.Round(x, places)
	if err != nil {
		return 0
	}
	return r
}

func (t tally) roundedCategories() [4]float64 {
	var out [4]float64
	for i := range out {
		out[i] = round(t.categoryMean(i), averagePrecision)
	}
	return out
}

// reportedComposite is the composite shown next to the category averages.
// It is taken from the rounded categories rather than the raw sums.
func (t tally) reportedComposite() float64 {
	cats := t.roundedCategories()
	return round((cats[0]+cats[1]+cats[2]+cats[3])/float64(len(cats)), averagePrecision)
}
