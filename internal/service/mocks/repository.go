package mocks

import (
	"context"
	"errors"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// MockFeedbackRepository is a function-based mock of service.FeedbackRepository.
type MockFeedbackRepository struct {
	CreateFunc func(ctx context.Context, f *models.Feedback) error
	ListFunc   func(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	CountFunc  func(ctx context.Context, filter models.FeedbackFilter) (int, error)
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, f)
	}
	return errors.New("CreateFunc not implemented")
}

func (m *MockFeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *MockFeedbackRepository) Count(ctx context.Context, filter models.FeedbackFilter) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return 0, errors.New("CountFunc not implemented")
}

// MockCenterRepository is a function-based mock of service.CenterRepository.
type MockCenterRepository struct {
	ListFunc   func(ctx context.Context) ([]models.ServiceCenter, error)
	GetFunc    func(ctx context.Context, id string) (models.ServiceCenter, error)
	UpsertFunc func(ctx context.Context, c models.ServiceCenter) error
}

func (m *MockCenterRepository) List(ctx context.Context) ([]models.ServiceCenter, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *MockCenterRepository) Get(ctx context.Context, id string) (models.ServiceCenter, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.ServiceCenter{}, errors.New("GetFunc not implemented")
}

func (m *MockCenterRepository) Upsert(ctx context.Context, c models.ServiceCenter) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, c)
	}
	return errors.New("UpsertFunc not implemented")
}

// MockUserRepository is a function-based mock of service.UserRepository.
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, u *models.User) error
	FindByEmailFunc func(ctx context.Context, email string) (models.User, error)
	ListFunc        func(ctx context.Context) ([]models.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return errors.New("CreateFunc not implemented")
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return models.User{}, errors.New("FindByEmailFunc not implemented")
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

// MockSettingsRepository is a function-based mock of service.SettingsRepository.
type MockSettingsRepository struct {
	GetFunc  func(ctx context.Context) (models.Settings, error)
	SaveFunc func(ctx context.Context, s *models.Settings) error
}

func (m *MockSettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return models.Settings{}, errors.New("GetFunc not implemented")
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return errors.New("SaveFunc not implemented")
}
