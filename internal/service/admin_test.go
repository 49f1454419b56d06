package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/godilite/feedback-server/internal/auth"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memoryUsers keeps users keyed by email.
func memoryUsers() *mocks.MockUserRepository {
	users := map[string]models.User{}
	var order []string
	return &mocks.MockUserRepository{
		CreateFunc: func(ctx context.Context, u *models.User) error {
			if _, ok := users[u.Email]; ok {
				return models.ErrDuplicate
			}
			u.ID = "user-" + u.Email
			u.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			users[u.Email] = *u
			order = append(order, u.Email)
			return nil
		},
		FindByEmailFunc: func(ctx context.Context, email string) (models.User, error) {
			u, ok := users[strings.ToLower(email)]
			if !ok {
				return models.User{}, models.ErrNotFound
			}
			return u, nil
		},
		ListFunc: func(ctx context.Context) ([]models.User, error) {
			out := make([]models.User, 0, len(order))
			for _, e := range order {
				out = append(out, users[e])
			}
			return out, nil
		},
	}
}

func memorySettings() *mocks.MockSettingsRepository {
	var saved *models.Settings
	return &mocks.MockSettingsRepository{
		GetFunc: func(ctx context.Context) (models.Settings, error) {
			if saved == nil {
				return models.Settings{}, models.ErrNotFound
			}
			return *saved, nil
		},
		SaveFunc: func(ctx context.Context, s *models.Settings) error {
			s.UpdatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
			cp := *s
			saved = &cp
			return nil
		},
	}
}

func newAdminService(t *testing.T) (*AdminService, *auth.TokenIssuer) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAdminService(memoryUsers(), memorySettings(), memoryCenters(), tokens, zaptest.NewLogger(t)), tokens
}

func TestNewAdminService(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	assert.Panics(t, func() { NewAdminService(nil, memorySettings(), memoryCenters(), tokens, nil) })
	assert.Panics(t, func() { NewAdminService(memoryUsers(), memorySettings(), memoryCenters(), nil, nil) })
}

// TestAdminService_CreateUser tests user validation and creation
func TestAdminService_CreateUser(t *testing.T) {
	svc, _ := newAdminService(t)

	t.Run("defaults to user role and normalizes email", func(t *testing.T) {
		u, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: " Aye ", Email: " Aye@Example.com ", Password: "password1"})

		require.NoError(t, err)
		assert.Equal(t, "aye@example.com", u.Email)
		assert.Equal(t, "Aye", u.Name)
		assert.Equal(t, models.RoleUser, u.Role)
		assert.NotEqual(t, "password1", u.PasswordHash)
		assert.True(t, auth.CheckPassword(u.PasswordHash, "password1"))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.CreateUser(context.Background(), CreateUserRequest{Email: "aye@example.com", Password: "password2"})

		assert.ErrorIs(t, err, ErrConflict)
	})

	cases := []struct {
		name string
		req  CreateUserRequest
	}{
		{name: "bad email", req: CreateUserRequest{Email: "not-an-email", Password: "password1"}},
		{name: "display name in email", req: CreateUserRequest{Email: "Bob <bob@example.com>", Password: "password1"}},
		{name: "short password", req: CreateUserRequest{Email: "bob@example.com", Password: "short"}},
		{name: "unknown role", req: CreateUserRequest{Email: "bob@example.com", Password: "password1", Role: "OWNER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	t.Run("list in creation order", func(t *testing.T) {
		_, err := svc.CreateUser(context.Background(), CreateUserRequest{Email: "zaw@example.com", Password: "password1", Role: "admin"})
		require.NoError(t, err)

		users, err := svc.ListUsers(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "aye@example.com", users[0].Email)
		assert.Equal(t, models.RoleAdmin, users[1].Role)
	})
}

// TestAdminService_Login tests credential checks and token issuance
func TestAdminService_Login(t *testing.T) {
	svc, tokens := newAdminService(t)
	created, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "correct-horse")
	require.NoError(t, err)
	require.True(t, created)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := svc.Login(context.Background(), "Admin@Example.com", "correct-horse")

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, res.User.Role)
		assert.False(t, res.ExpiresAt.IsZero())

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.UserID)
		assert.Equal(t, models.RoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "admin@example.com", "wrong")

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown user looks the same", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "correct-horse")

		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "unauthorized: invalid credentials", err.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "", "x")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("ensure admin is idempotent", func(t *testing.T) {
		created, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "another-password")

		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("storage failure", func(t *testing.T) {
		users := &mocks.MockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (models.User, error) {
				return models.User{}, errors.New("connection refused")
			},
		}
		svc := NewAdminService(users, memorySettings(), memoryCenters(), tokens, zaptest.NewLogger(t))

		_, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestAdminService_Settings(t *testing.T) {
	svc, _ := newAdminService(t)

	t.Run("defaults before first save", func(t *testing.T) {
		got, err := svc.Settings(context.Background())

		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), got)
	})

	t.Run("save and read back", func(t *testing.T) {
		saved, err := svc.SaveSettings(context.Background(), models.Settings{
			AdminEmail:        " ops@example.com ",
			FeedbackFormTitle: "  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", saved.AdminEmail)
		assert.Equal(t, "Customer Feedback", saved.FeedbackFormTitle)
		assert.False(t, saved.UpdatedAt.IsZero())

		got, err := svc.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, saved, got)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.SaveSettings(context.Background(), models.Settings{NotificationEmail: "nope"})

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "notificationEmail")
	})
}

func TestAdminService_SeedCenters(t *testing.T) {
	var upserted []models.ServiceCenter
	centers := memoryCenters()
	centers.UpsertFunc = func(ctx context.Context, c models.ServiceCenter) error {
		upserted = append(upserted, c)
		return nil
	}
	svc := NewAdminService(memoryUsers(), memorySettings(), centers, auth.NewTokenIssuer("s", time.Hour), zaptest.NewLogger(t))

	err := svc.SeedCenters(context.Background(), []models.ServiceCenter{{ID: " mdy ", Name: "1.Care MDY"}, {ID: "ygn", Name: "1.Care YGN"}})
	require.NoError(t, err)
	require.Len(t, upserted, 2)
	assert.Equal(t, "mdy", upserted[0].ID)

	err = svc.SeedCenters(context.Background(), []models.ServiceCenter{{ID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
