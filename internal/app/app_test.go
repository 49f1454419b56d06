package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/godilite/feedback-server/internal/config"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seedDoc = `
centers:
  - id: mdy
    name: 1.Care MDY
    location: Mandalay
  - id: ygn
    name: 1.Care YGN
    location: Yangon
    manager: Ko Aung
admin:
  name: Admin
  email: admin@example.com
  password: changeme123
`

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:               "test",
		DBDriver:             "sqlite3",
		DBPath:               ":memory:",
		HTTPAddr:             "127.0.0.1:0",
		JWTSecret:            "test-secret",
		JWTExpiry:            time.Hour,
		ReportTimezone:       "UTC",
		ReportExpectedPerDay: 3,
		ReportZeroBaseline:   "hundred",
		ReportCacheTTL:       time.Minute,
		DefaultCenterID:      "mdy",
		SubmitRateLimitRPS:   10,
		SubmitRateLimitBurst: 10,
		ShutdownTimeout:      5 * time.Second,
	}
}

// TestParseSeed tests decoding and validation of seed documents
func TestParseSeed(t *testing.T) {
	t.Run("centers and admin", func(t *testing.T) {
		seed, err := ParseSeed(strings.NewReader(seedDoc))

		require.NoError(t, err)
		require.Len(t, seed.Centers, 2)
		assert.Equal(t, "ygn", seed.Centers[1].ID)
		assert.Equal(t, "Ko Aung", seed.Centers[1].Manager)
		require.NotNil(t, seed.Admin)
		assert.Equal(t, "admin@example.com", seed.Admin.Email)
	})

	t.Run("empty document", func(t *testing.T) {
		seed, err := ParseSeed(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, seed.Centers)
		assert.Nil(t, seed.Admin)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseSeed(strings.NewReader("centres:\n  - id: mdy\n"))

		assert.Error(t, err)
	})

	t.Run("duplicate center", func(t *testing.T) {
		_, err := ParseSeed(strings.NewReader("centers:\n  - {id: mdy, name: A}\n  - {id: mdy, name: B}\n"))

		assert.ErrorContains(t, err, "listed twice")
	})

	t.Run("center without name", func(t *testing.T) {
		_, err := ParseSeed(strings.NewReader("centers:\n  - id: mdy\n"))

		assert.ErrorContains(t, err, "id and name are required")
	})

	t.Run("admin without password", func(t *testing.T) {
		_, err := ParseSeed(strings.NewReader("admin:\n  email: a@example.com\n"))

		assert.ErrorContains(t, err, "seed admin")
	})
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Len(t, seed.Centers, 2)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestNewApp tests service wiring over an in-memory store
func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds centers and admin idempotently", func(t *testing.T) {
		a, err := NewApp(ctx, testConfig(), zap.NewNop())
		require.NoError(t, err)
		defer a.Close()

		seed, err := ParseSeed(strings.NewReader(seedDoc))
		require.NoError(t, err)

		require.NoError(t, a.Seed(ctx, seed))
		require.NoError(t, a.Seed(ctx, seed))

		centers, err := a.Feedback.Centers(ctx)
		require.NoError(t, err)
		assert.Len(t, centers, 2)

		users, err := a.Admin.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		res, err := a.Admin.Login(ctx, "admin@example.com", "changeme123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("default seed has three centers", func(t *testing.T) {
		a, err := NewApp(ctx, testConfig(), zap.NewNop())
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.Seed(ctx, DefaultSeed()))

		centers, err := a.Feedback.Centers(ctx)
		require.NoError(t, err)
		assert.Len(t, centers, 3)
	})

	t.Run("submitted feedback reaches the reports", func(t *testing.T) {
		a, err := NewApp(ctx, testConfig(), zap.NewNop())
		require.NoError(t, err)
		defer a.Close()
		require.NoError(t, a.Seed(ctx, DefaultSeed()))

		five := 5
		_, err = a.Feedback.Submit(ctx, service.SubmitRequest{
			ServiceRating: &five, ConditionRating: &five, FeeRating: &five, DurationRating: &five,
		})
		require.NoError(t, err)

		now := time.Now()
		avg, err := a.Reports.Averages(ctx, service.ReportQuery{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
		require.NoError(t, err)
		assert.Equal(t, 1, avg.Averages.Count)
		assert.Equal(t, 5.0, avg.Averages.Composite)
	})

	t.Run("invalid timezone", func(t *testing.T) {
		cfg := testConfig()
		cfg.ReportTimezone = "Nowhere/Special"

		_, err := NewApp(ctx, cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := testConfig()
		cfg.DBDriver = "oracle"

		_, err := NewApp(ctx, cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

// TestRun tests that both servers come up and stop on cancellation
func TestRun(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, a.Start())
	require.NotNil(t, a.HTTPAddr())

	resp, err := http.Get("http://" + a.HTTPAddr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + a.HTTPAddr().String() + "/api/centers")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(ctx))
}
