package aggregation

import "github.com/godilite/feedback-server/internal/repository/models"

// ZeroBaseline decides the reported change when the previous value is zero
// and the current one is not.
type ZeroBaseline int

const (
	// ZeroBaselineHundred reports a 100% increase.
	ZeroBaselineHundred ZeroBaseline = iota
	// ZeroBaselineZero reports no change.
	ZeroBaselineZero
)

const (
	DefaultExpectedPerDay = 3.0
	DefaultPrecision      = 1
)

// Options configures the heuristics that have no single correct value.
type Options struct {
	ExpectedPerDay float64
	Precision      int
	ZeroBaseline   ZeroBaseline
}

func DefaultOptions() Options {
	return Options{
		ExpectedPerDay: DefaultExpectedPerDay,
		Precision:      DefaultPrecision,
		ZeroBaseline:   ZeroBaselineHundred,
	}
}

func (o Options) expectedPerDay() float64 {
	if o.ExpectedPerDay <= 0 {
		return DefaultExpectedPerDay
	}
	return o.ExpectedPerDay
}

// Period is one side of a comparison.
type Period struct {
	Records []models.Feedback
	Days    int
	Centers int
}

type PeriodSummary struct {
	Count         int     `json:"count"`
	Excluded      int     `json:"excludedCount"`
	AverageRating float64 `json:"averageRating"`
	ResponseRate  int     `json:"responseRate"`
	Satisfaction  float64 `json:"customerSatisfaction"`
	Tier          Tier    `json:"tier"`
}

type Comparison struct {
	Current               PeriodSummary `json:"current"`
	Previous              PeriodSummary `json:"previous"`
	CountChangePct        float64       `json:"countChangePct"`
	RatingChangePct       float64       `json:"ratingChangePct"`
	ResponseRateChangePct float64       `json:"responseRateChangePct"`
	SatisfactionChangePct float64       `json:"satisfactionChangePct"`
	RatingDiff            float64       `json:"ratingDiff"`
}

// periodStats keeps the unrounded figures a comparison is computed from.
type periodStats struct {
	t            tally
	responseRate float64
	satisfaction float64
}

func statsOf(p Period, opts Options) periodStats {
	t := tallyOf(p.Records)
	return periodStats{
		t:            t,
		responseRate: responseRatio(t.count, p.Days, opts.expectedPerDay(), p.Centers),
		satisfaction: t.compositeMean() * satisfactionScale,
	}
}

func (s periodStats) summary() PeriodSummary {
	avg := s.t.reportedComposite()
	return PeriodSummary{
		Count:         s.t.count,
		Excluded:      s.t.excluded,
		AverageRating: avg,
		ResponseRate:  int(round(s.responseRate, 0)),
		Satisfaction:  round(s.satisfaction, averagePrecision),
		Tier:          Classify(avg),
	}
}

// Summarize reduces a single period to its headline figures.
func Summarize(p Period, opts Options) PeriodSummary {
	return statsOf(p, opts).summary()
}

// Compare computes the change of each KPI from previous to current. Changes
// are derived from unrounded values and rounded to opts.Precision.
func Compare(current, previous Period, opts Options) Comparison {
	cur := statsOf(current, opts)
	prev := statsOf(previous, opts)

	return Comparison{
		Current:               cur.summary(),
		Previous:              prev.summary(),
		CountChangePct:        PercentChange(float64(cur.t.count), float64(prev.t.count), opts),
		RatingChangePct:       PercentChange(cur.t.compositeMean(), prev.t.compositeMean(), opts),
		ResponseRateChangePct: PercentChange(cur.responseRate, prev.responseRate, opts),
		SatisfactionChangePct: PercentChange(cur.satisfaction, prev.satisfaction, opts),
		RatingDiff:            round(cur.t.compositeMean()-prev.t.compositeMean(), averagePrecision),
	}
}

// PercentChange returns (current-previous)/previous*100. A zero previous value
// is resolved by opts.ZeroBaseline instead of dividing.
func PercentChange(current, previous float64, opts Options) float64 {
	if previous == 0 {
		if current == 0 || opts.ZeroBaseline == ZeroBaselineZero {
			return 0
		}
		return 100
	}
	return round((current-previous)/previous*100, opts.Precision)
}
