package models

import (
	"errors"
	"time"
)

// MissingRating marks a rating column that was NULL in storage. It is outside
// the valid [0,5] range so aggregation treats the record as malformed.
const MissingRating = -1

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type ServiceCenter struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Location    string `json:"location" yaml:"location"`
	Manager     string `json:"manager,omitempty" yaml:"manager"`
	ContactInfo string `json:"contactInfo,omitempty" yaml:"contactInfo"`
}

type Feedback struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"createdAt"`
	ServiceRating   int            `json:"serviceRating"`
	ConditionRating int            `json:"conditionRating"`
	FeeRating       int            `json:"feeRating"`
	DurationRating  int            `json:"durationRating"`
	Comment         string         `json:"comment"`
	ServiceCenterID string         `json:"serviceCenterId"`
	ServiceCenter   *ServiceCenter `json:"serviceCenter,omitempty"`
}

// Ratings returns the four category ratings in Service, Condition, Fee,
// Duration order.
func (f Feedback) Ratings() [4]int {
	return [4]int{f.ServiceRating, f.ConditionRating, f.FeeRating, f.DurationRating}
}

// FeedbackFilter narrows feedback queries. Zero values mean "no constraint".
type FeedbackFilter struct {
	CenterID  string
	From      time.Time
	To        time.Time
	MinRating float64
	Query     string
	Limit     int
	Offset    int
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type Settings struct {
	AdminEmail        string    `json:"adminEmail"`
	NotificationEmail string    `json:"notificationEmail"`
	FeedbackFormTitle string    `json:"feedbackFormTitle"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
