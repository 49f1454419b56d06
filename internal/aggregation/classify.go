package aggregation

type Tier int

const (
	TierNeedsImprovement Tier = iota
	TierGood
	TierExcellent
)

const (
	excellentThreshold = 4.0
	goodThreshold      = 3.0
)

// Classify maps an average onto a display tier. Each tier includes its lower
// bound: 4 is Excellent, 3 is Good.
func Classify(avg float64) Tier {
	switch {
	case avg >= excellentThreshold:
		return TierExcellent
	case avg >= goodThreshold:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierGood:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// Level is the coarse high/medium/low bucket used for colouring.
func (t Tier) Level() string {
	switch t {
	case TierExcellent:
		return "high"
	case TierGood:
		return "medium"
	default:
		return "low"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
