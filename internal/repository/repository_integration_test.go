package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/repository/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would open its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(context.Background(), db))
	return db
}

func seedCenters(t *testing.T, db *sql.DB) {
	t.Helper()

	centers := repository.NewCenterRepository(db, repository.DialectSQLite)
	for _, c := range []models.ServiceCenter{
		{ID: "mdy", Name: "1.Care MDY", Location: "Mandalay"},
		{ID: "ygn", Name: "1.Care YGN", Location: "Yangon"},
	} {
		require.NoError(t, centers.Upsert(context.Background(), c))
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, repository.Migrate(context.Background(), db))
}

func TestFeedbackRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCenters(t, db)
	repo := repository.NewFeedbackRepository(db, repository.DialectSQLite)

	base := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	records := []models.Feedback{
		{CreatedAt: base, ServiceRating: 5, ConditionRating: 5, FeeRating: 5, DurationRating: 5, Comment: "Great staff", ServiceCenterID: "mdy"},
		{CreatedAt: base.Add(time.Hour), ServiceRating: 3, ConditionRating: 3, FeeRating: 3, DurationRating: 3, Comment: "ok", ServiceCenterID: "mdy"},
		{CreatedAt: base.Add(24 * time.Hour), ServiceRating: 1, ConditionRating: 2, FeeRating: 1, DurationRating: 2, Comment: "100% slow", ServiceCenterID: "ygn"},
	}
	for i := range records {
		require.NoError(t, repo.Create(ctx, &records[i]))
		assert.NotEmpty(t, records[i].ID)
	}

	t.Run("list is newest first with center joined", func(t *testing.T) {
		got, err := repo.List(ctx, models.FeedbackFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, records[2].ID, got[0].ID)
		assert.Equal(t, records[0].ID, got[2].ID)
		assert.True(t, base.Equal(got[2].CreatedAt))
		require.NotNil(t, got[0].ServiceCenter)
		assert.Equal(t, "Yangon", got[0].ServiceCenter.Location)
		assert.Equal(t, [4]int{1, 2, 1, 2}, got[0].Ratings())
	})

	t.Run("time range is inclusive", func(t *testing.T) {
		got, err := repo.List(ctx, models.FeedbackFilter{From: base, To: base.Add(time.Hour)})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		n, err := repo.Count(ctx, models.FeedbackFilter{From: base.Add(time.Nanosecond)})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("center filter", func(t *testing.T) {
		n, err := repo.Count(ctx, models.FeedbackFilter{CenterID: "mdy"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("minimum composite rating", func(t *testing.T) {
		got, err := repo.List(ctx, models.FeedbackFilter{MinRating: 3})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, records[1].ID, got[0].ID)
	})

	t.Run("comment search is case insensitive and literal", func(t *testing.T) {
		got, err := repo.List(ctx, models.FeedbackFilter{Query: "GREAT"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, records[0].ID, got[0].ID)

		got, err = repo.List(ctx, models.FeedbackFilter{Query: "0%"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, records[2].ID, got[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := repo.List(ctx, models.FeedbackFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, records[0].ID, page[0].ID)

		n, err := repo.Count(ctx, models.FeedbackFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("duplicate id", func(t *testing.T) {
		dup := records[0]
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, models.ErrDuplicate)
	})

	t.Run("null ratings load as missing", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO feedback (id, created_at, service_rating, condition_rating, fee_rating, duration_rating, service_center_id)
			VALUES ('legacy', '2020-01-01T00:00:00.000000000Z', NULL, 4, 4, 4, 'mdy')`)
		require.NoError(t, err)

		got, err := repo.List(ctx, models.FeedbackFilter{To: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, models.MissingRating, got[0].ServiceRating)
		assert.Equal(t, 4, got[0].FeeRating)
	})
}

func TestCenterRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCenters(t, db)
	repo := repository.NewCenterRepository(db, repository.DialectSQLite)

	centers, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, centers, 2)
	assert.Equal(t, "mdy", centers[0].ID)

	require.NoError(t, repo.Upsert(ctx, models.ServiceCenter{ID: "mdy", Name: "1.Care MDY", Location: "Mandalay", Manager: "Ko Aung"}))
	c, err := repo.Get(ctx, "mdy")
	require.NoError(t, err)
	assert.Equal(t, "Ko Aung", c.Manager)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db, repository.DialectSQLite)

	u := models.User{Name: "Admin", Email: " Admin@Gmail.com ", PasswordHash: "hash", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, &u))
	assert.Equal(t, "admin@gmail.com", u.Email)

	found, err := repo.FindByEmail(ctx, "ADMIN@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	dup := models.User{Email: "admin@gmail.com", PasswordHash: "x", Role: models.RoleUser}
	assert.ErrorIs(t, repo.Create(ctx, &dup), models.ErrDuplicate)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSettingsRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewSettingsRepository(db, repository.DialectSQLite)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	s := models.Settings{AdminEmail: "admin@gmail.com", FeedbackFormTitle: "Customer Feedback"}
	require.NoError(t, repo.Save(ctx, &s))

	s.NotificationEmail = "alerts@gmail.com"
	require.NoError(t, repo.Save(ctx, &s))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alerts@gmail.com", got.NotificationEmail)
	assert.Equal(t, "Customer Feedback", got.FeedbackFormTitle)
	assert.False(t, got.UpdatedAt.IsZero())
}
