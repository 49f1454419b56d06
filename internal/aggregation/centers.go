package aggregation

import "github.com/godilite/feedback-server/internal/repository/models"

type CenterStats struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Averages     Averages `json:"averages"`
	ResponseRate int      `json:"responseRate"`
	Satisfaction float64  `json:"customerSatisfaction"`
	Tier         Tier     `json:"tier"`
}

// ByCenter computes per-center statistics for every center in centers, in the
// given order. Centers without feedback get zero rows; records for centers not
// listed are ignored.
func ByCenter(records []models.Feedback, centers []models.ServiceCenter, days int, opts Options) []CenterStats {
	grouped := make(map[string]*tally, len(centers))
	for _, c := range centers {
		grouped[c.ID] = &tally{}
	}
	for _, r := range records {
		if t, ok := grouped[r.ServiceCenterID]; ok {
			t.add(r)
		}
	}

	out := make([]CenterStats, 0, len(centers))
	for _, c := range centers {
		t := grouped[c.ID]
		avg := t.averages()
		out = append(out, CenterStats{
			ID:           c.ID,
			Name:         c.Name,
			Location:     c.Location,
			Averages:     avg,
			ResponseRate: ResponseRate(t.count, days, opts.expectedPerDay(), 1),
			Satisfaction: round(t.compositeMean()*satisfactionScale, averagePrecision),
			Tier:         Classify(avg.Composite),
		})
	}
	return out
}
