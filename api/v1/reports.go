// Package v1 defines the feedback.v1 reporting API: request and response
// messages, the FeedbackReports service descriptor and its client. Messages
// travel with the JSON codec registered in codec.go.
package v1

import "google.golang.org/protobuf/types/known/timestamppb"

type ReportRequest struct {
	StartDate *timestamppb.Timestamp `json:"start_date,omitempty"`
	EndDate   *timestamppb.Timestamp `json:"end_date,omitempty"`
	CenterId  string                 `json:"center_id,omitempty"`
	Timezone  string                 `json:"timezone,omitempty"`
}

func (x *ReportRequest) GetStartDate() *timestamppb.Timestamp {
	if x != nil {
		return x.StartDate
	}
	return nil
}

func (x *ReportRequest) GetEndDate() *timestamppb.Timestamp {
	if x != nil {
		return x.EndDate
	}
	return nil
}

func (x *ReportRequest) GetCenterId() string {
	if x != nil {
		return x.CenterId
	}
	return ""
}

func (x *ReportRequest) GetTimezone() string {
	if x != nil {
		return x.Timezone
	}
	return ""
}

type CategoryAverages struct {
	Service       float64 `json:"service"`
	Condition     float64 `json:"condition"`
	Fee           float64 `json:"fee"`
	Duration      float64 `json:"duration"`
	Composite     float64 `json:"composite"`
	Count         int64   `json:"count"`
	ExcludedCount int64   `json:"excluded_count"`
}

type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Tier     string  `json:"tier"`
}

type AveragesResponse struct {
	Averages   *CategoryAverages `json:"averages"`
	Categories []*CategoryScore  `json:"categories"`
}

type PeriodSummary struct {
	Count         int64   `json:"count"`
	ExcludedCount int64   `json:"excluded_count"`
	AverageRating float64 `json:"average_rating"`
	ResponseRate  int32   `json:"response_rate"`
	Satisfaction  float64 `json:"satisfaction"`
	Tier          string  `json:"tier"`
}

type PeriodComparisonResponse struct {
	Current               *PeriodSummary `json:"current"`
	Previous              *PeriodSummary `json:"previous"`
	CountChangePct        float64        `json:"count_change_pct"`
	RatingChangePct       float64        `json:"rating_change_pct"`
	ResponseRateChangePct float64        `json:"response_rate_change_pct"`
	SatisfactionChangePct float64        `json:"satisfaction_change_pct"`
	RatingDiff            float64        `json:"rating_diff"`
}

type SeriesPoint struct {
	Date      string  `json:"date"`
	Label     string  `json:"label"`
	Count     int64   `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

type DailySeriesResponse struct {
	Points []*SeriesPoint `json:"points"`
}

type CenterStats struct {
	Id           string            `json:"id"`
	Name         string            `json:"name"`
	Location     string            `json:"location"`
	Averages     *CategoryAverages `json:"averages"`
	ResponseRate int32             `json:"response_rate"`
	Satisfaction float64           `json:"satisfaction"`
	Tier         string            `json:"tier"`
}

type CenterStatsResponse struct {
	Centers []*CenterStats `json:"centers"`
}
