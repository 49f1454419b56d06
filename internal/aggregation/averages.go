package aggregation

import "github.com/godilite/feedback-server/internal/repository/models"

// Averages holds per-category and composite averages rounded to one decimal.
// Composite is the rounded mean of the four reported category averages, so it
// never drifts more than half a decimal step from them.
type Averages struct {
	Service   float64 `json:"service"`
	Condition float64 `json:"condition"`
	Fee       float64 `json:"fee"`
	Duration  float64 `json:"duration"`
	Composite float64 `json:"composite"`
	Count     int     `json:"count"`
	Excluded  int     `json:"excludedCount"`
}

// ComputeAverages averages the valid records. Malformed records are skipped
// and reported in Excluded; an empty input yields all zeros.
func ComputeAverages(records []models.Feedback) Averages {
	return tallyOf(records).averages()
}

func (t tally) averages() Averages {
	cats := t.roundedCategories()
	return Averages{
		Service:   cats[0],
		Condition: cats[1],
		Fee:       cats[2],
		Duration:  cats[3],
		Composite: t.reportedComposite(),
		Count:     t.count,
		Excluded:  t.excluded,
	}
}

// Category returns the rounded average for c.
func (a Averages) Category(c Category) float64 {
	switch c {
	case CategoryService:
		return a.Service
	case CategoryCondition:
		return a.Condition
	case CategoryFee:
		return a.Fee
	case CategoryDuration:
		return a.Duration
	}
	return 0
}

type CategoryAverage struct {
	Category Category `json:"category"`
	Average  float64  `json:"average"`
	Tier     Tier     `json:"tier"`
}

// CategoryBreakdown lists the four category averages in display order.
func CategoryBreakdown(a Averages) []CategoryAverage {
	out := make([]CategoryAverage, 0, len(Categories))
	for _, c := range Categories {
		avg := a.Category(c)
		out = append(out, CategoryAverage{Category: c, Average: avg, Tier: Classify(avg)})
	}
	return out
}

// Satisfaction rescales a 0-5 composite average to a 0-100 percentage.
func Satisfaction(composite float64) float64 {
	return round(composite*satisfactionScale, averagePrecision)
}

// Distribution counts how often each rating value 0..5 was given per
// category. Malformed records are skipped.
func Distribution(records []models.Feedback) map[Category][MaxRating + 1]int {
	out := make(map[Category][MaxRating + 1]int, len(Categories))
	for _, c := range Categories {
		out[c] = [MaxRating + 1]int{}
	}
	for _, r := range records {
		if !Valid(r) {
			continue
		}
		for i, v := range r.Ratings() {
			hist := out[Categories[i]]
			hist[v]++
			out[Categories[i]] = hist
		}
	}
	return out
}
