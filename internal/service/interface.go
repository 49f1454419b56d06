package service

import (
	"context"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// FeedbackRepository is the append-only feedback log.
type FeedbackRepository interface {
	Create(ctx context.Context, f *models.Feedback) error
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	Count(ctx context.Context, filter models.FeedbackFilter) (int, error)
}

type CenterRepository interface {
	List(ctx context.Context) ([]models.ServiceCenter, error)
	Get(ctx context.Context, id string) (models.ServiceCenter, error)
	Upsert(ctx context.Context, c models.ServiceCenter) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

// Observer receives business events for metrics. A nil Observer is replaced
// by a no-op.
type Observer interface {
	FeedbackSubmitted(centerID string)
	RecordsExcluded(n int)
}

type nopObserver struct{}

func (nopObserver) FeedbackSubmitted(string) {}
func (nopObserver) RecordsExcluded(int)      {}
