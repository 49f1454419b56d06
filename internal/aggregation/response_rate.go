package aggregation

import (
	"math"
	"time"
)

// DefaultPeriodDays is the window assumed when a report has no date range.
const DefaultPeriodDays = 30

// ResponseRate estimates the percentage of expected feedback that was actually
// received: actual / (periodDays * expectedPerDay * centers) * 100, rounded to
// an integer. centerCount below 1 counts as one center. A non-positive
// expectation yields 0.
//
// This is a heuristic; nothing in the system measures real visit volume.
func ResponseRate(actual, periodDays int, expectedPerDay float64, centerCount int) int {
	return int(round(responseRatio(actual, periodDays, expectedPerDay, centerCount), 0))
}

func responseRatio(actual, periodDays int, expectedPerDay float64, centerCount int) float64 {
	if centerCount < 1 {
		centerCount = 1
	}
	expected := float64(periodDays) * expectedPerDay * float64(centerCount)
	if expected <= 0 {
		return 0
	}
	return float64(actual) / expected * 100
}

// PeriodDays is the length of [start, end] in whole days, rounding partial
// days up. Any range shorter than a day, including an empty or inverted one,
// counts as one day.
func PeriodDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
