package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"go.uber.org/zap"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset. It must not be used in
// production.
const DevJWTSecret = "feedback-dev-secret-change-me"

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string
	DBPath   string
	DBDriver string

	// RedisAddr enables the gRPC report cache when non-empty.
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPAddr              string
	CORSOrigins           []string

	JWTSecret string
	JWTExpiry time.Duration

	ReportTimezone       string
	ReportExpectedPerDay float64
	ReportZeroBaseline   string
	ReportCacheTTL       time.Duration

	DefaultCenterID      string
	SubmitRateLimitRPS   float64
	SubmitRateLimitBurst int

	SeedFile        string
	ShutdownTimeout time.Duration
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/feedback.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:           getList("CORS_ORIGINS"),
		JWTSecret:             getEnv("JWT_SECRET", DevJWTSecret),
		JWTExpiry:             time.Duration(getInt("JWT_EXPIRE_HOURS", 24)) * time.Hour,
		ReportTimezone:        getEnv("REPORT_TIMEZONE", "UTC"),
		ReportExpectedPerDay:  getFloat("REPORT_EXPECTED_PER_DAY", aggregation.DefaultExpectedPerDay),
		ReportZeroBaseline:    getEnv("REPORT_ZERO_BASELINE", "hundred"),
		ReportCacheTTL:        getDuration("REPORT_CACHE_TTL", time.Minute),
		DefaultCenterID:       getEnv("DEFAULT_CENTER_ID", "mdy"),
		SubmitRateLimitRPS:    getFloat("SUBMIT_RATE_LIMIT_RPS", 1),
		SubmitRateLimitBurst:  getInt("SUBMIT_RATE_LIMIT_BURST", 5),
		SeedFile:              getEnv("SEED_FILE", ""),
		ShutdownTimeout:       getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.AggregationOptions(); err != nil {
		return err
	}
	return nil
}

// Location resolves REPORT_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// AggregationOptions builds the engine options from the REPORT_* settings.
func (c *Config) AggregationOptions() (aggregation.Options, error) {
	opts := aggregation.DefaultOptions()
	if c.ReportExpectedPerDay > 0 {
		opts.ExpectedPerDay = c.ReportExpectedPerDay
	}
	switch strings.ToLower(c.ReportZeroBaseline) {
	case "", "hundred", "100":
		opts.ZeroBaseline = aggregation.ZeroBaselineHundred
	case "zero", "0":
		opts.ZeroBaseline = aggregation.ZeroBaselineZero
	default:
		return opts, fmt.Errorf("invalid REPORT_ZERO_BASELINE %q: want hundred or zero", c.ReportZeroBaseline)
	}
	return opts, nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getList splits a comma separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
