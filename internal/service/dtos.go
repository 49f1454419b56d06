package service

import (
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/repository/models"
)

// ReportQuery selects the records a report is computed from. Zero From/To
// fall back to the last aggregation.DefaultPeriodDays days; an empty Timezone
// uses the service default.
type ReportQuery struct {
	From     time.Time
	To       time.Time
	CenterID string
	Timezone string
}

// Window is an inclusive [From, To] interval.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type AverageRatings struct {
	Averages   aggregation.Averages          `json:"averages"`
	Categories []aggregation.CategoryAverage `json:"categories"`
}

type PeriodComparison struct {
	Current    Window                 `json:"currentPeriod"`
	Previous   Window                 `json:"previousPeriod"`
	Comparison aggregation.Comparison `json:"comparison"`
}

type Report struct {
	Window       Window                                                  `json:"period"`
	Timezone     string                                                  `json:"timezone"`
	CenterID     string                                                  `json:"centerId,omitempty"`
	Summary      aggregation.PeriodSummary                               `json:"summary"`
	Averages     aggregation.Averages                                    `json:"averages"`
	Categories   []aggregation.CategoryAverage                           `json:"categories"`
	Centers      []aggregation.CenterStats                               `json:"centers"`
	Previous     Window                                                  `json:"previousPeriod"`
	Comparison   aggregation.Comparison                                  `json:"comparison"`
	Series       []aggregation.SeriesPoint                               `json:"series"`
	Distribution map[aggregation.Category][aggregation.MaxRating + 1]int `json:"distribution"`
}

type Dashboard struct {
	TotalFeedback      int                           `json:"totalFeedback"`
	ExcludedFeedback   int                           `json:"excludedFeedback"`
	AverageRating      float64                       `json:"averageRating"`
	Averages           aggregation.Averages          `json:"averages"`
	Categories         []aggregation.CategoryAverage `json:"categories"`
	Recent             []models.Feedback             `json:"recentFeedback"`
	CurrentMonth       Window                        `json:"currentMonth"`
	CurrentMonthCount  int                           `json:"currentMonthCount"`
	PreviousMonthCount int                           `json:"previousMonthCount"`
	MonthlyRating      float64                       `json:"monthlyRating"`
	RatingDiff         float64                       `json:"ratingDiff"`
	CountGrowth        float64                       `json:"countGrowth"`
	Comparison         aggregation.Comparison        `json:"comparison"`
	Series             []aggregation.SeriesPoint     `json:"series"`
}

// SubmitRequest carries one form submission. Ratings are pointers so that an
// omitted rating can be told apart from a zero.
type SubmitRequest struct {
	CenterID        string `json:"-"`
	ServiceRating   *int   `json:"serviceRating"`
	ConditionRating *int   `json:"conditionRating"`
	FeeRating       *int   `json:"feeRating"`
	DurationRating  *int   `json:"durationRating"`
	Comment         string `json:"comment"`
}

// ListQuery filters and paginates the feedback list. Page is 1-based.
type ListQuery struct {
	CenterID  string
	From      time.Time
	To        time.Time
	MinRating float64
	Query     string
	Page      int
	PageSize  int
	Timezone  string
}

type FeedbackPage struct {
	Items      []models.Feedback `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}
