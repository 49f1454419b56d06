package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/auth"
	"github.com/godilite/feedback-server/internal/config"
	handler "github.com/godilite/feedback-server/internal/grpc"
	"github.com/godilite/feedback-server/internal/httpapi"
	"github.com/godilite/feedback-server/internal/metrics"
	"github.com/godilite/feedback-server/internal/middleware"
	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/pkg/cache"
	dbbuilder "github.com/godilite/feedback-server/pkg/database"
	grpcsrv "github.com/godilite/feedback-server/pkg/grpc/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	readHeaderTimeout      = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// App owns the storage pool, the services built on it and, once started, the
// HTTP and gRPC servers.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	dbPool  *sql.DB
	cache   cache.Store
	metrics *metrics.Metrics
	tokens  *auth.TokenIssuer

	Feedback *service.FeedbackService
	Reports  *service.ReportService
	Admin    *service.AdminService

	limiter    *middleware.RateLimiter
	grpcServer *grpcsrv.Server
	httpServer *http.Server
	httpLis    net.Listener
	serveErr   chan error
}

// OpenDatabase connects to the configured store and brings its schema up to
// date.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, repository.Dialect, error) {
	dialect, err := repository.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}
	if dialect == repository.DialectSQLite && cfg.DBPath != ":memory:" && !strings.HasPrefix(cfg.DBPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, "", fmt.Errorf("create database directory: %w", err)
		}
	}
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, "", fmt.Errorf("database init failed: %w", err)
	}
	if err := repository.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, "", fmt.Errorf("database migration failed: %w", err)
	}
	return dbPool, dialect, nil
}

// NewApp wires storage, cache and services. No listener is opened until
// Start.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	aggOpts, err := cfg.AggregationOptions()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	dbPool, dialect, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Database pool initialized", zap.String("driver", string(dialect)))

	var store cache.Store = cache.Nop{}
	if cfg.RedisAddr != "" {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		store = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("REDIS_ADDR is empty, report cache disabled")
	}

	feedbackRepo := repository.NewFeedbackRepository(dbPool, dialect)
	centerRepo := repository.NewCenterRepository(dbPool, dialect)
	userRepo := repository.NewUserRepository(dbPool, dialect)
	settingsRepo := repository.NewSettingsRepository(dbPool, dialect)

	m := metrics.New()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	return &App{
		cfg:     cfg,
		logger:  logger,
		dbPool:  dbPool,
		cache:   store,
		metrics: m,
		tokens:  tokens,
		Feedback: service.NewFeedbackService(feedbackRepo, centerRepo, logger,
			cfg.DefaultCenterID, loc, m),
		Reports: service.NewReportService(feedbackRepo, centerRepo, logger,
			service.WithAggregationOptions(aggOpts),
			service.WithDefaultLocation(loc),
			service.WithReportObserver(m),
		),
		Admin: service.NewAdminService(userRepo, settingsRepo, centerRepo, tokens, logger),
	}, nil
}

// Start opens both listeners and serves in the background. Serve failures are
// reported through Run.
func (a *App) Start() error {
	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(a.cfg.GRPCPort),
		grpcsrv.WithLogger(a.logger),
		grpcsrv.WithReflection(a.cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcHandlers := handler.NewGRPCHandlers(a.Reports, a.cache, a.logger, a.cfg.ReportCacheTTL)
	grpcServer.RegisterServiceWithHealth(pb.FeedbackReports_ServiceName, func(s grpc.ServiceRegistrar) {
		pb.RegisterFeedbackReportsServer(s, grpcHandlers)
	})

	httpLis, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		_ = grpcServer.Shutdown(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.HTTPAddr, err)
	}

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.limiter = middleware.NewRateLimiter(a.cfg.SubmitRateLimitRPS, a.cfg.SubmitRateLimitBurst)
	h := httpapi.NewHandler(a.Feedback, a.Reports, a.Admin, a.dbPool, a.logger)
	router := httpapi.NewRouter(h, httpapi.RouterConfig{
		Tokens:        a.tokens,
		SubmitLimiter: a.limiter,
		Requests:      a.metrics,
		Metrics:       a.metrics.Handler(),
		CORSOrigins:   a.cfg.CORSOrigins,
		Logger:        a.logger,
	})

	a.grpcServer = grpcServer
	a.httpLis = httpLis
	a.httpServer = &http.Server{Handler: router, ReadHeaderTimeout: readHeaderTimeout}
	a.serveErr = make(chan error, 1)

	grpcServer.Start()
	a.logger.Info("HTTP server starting", zap.String("addr", httpLis.Addr().String()))
	go func() {
		if err := a.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
	}()
	return nil
}

// HTTPAddr is the bound HTTP address once started.
func (a *App) HTTPAddr() net.Addr {
	if a.httpLis == nil {
		return nil
	}
	return a.httpLis.Addr()
}

// Run starts the servers and blocks until ctx is cancelled or the HTTP
// server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	if err := a.Start(); err != nil {
		_ = a.Close()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-a.serveErr:
		a.logger.Error("HTTP server failed", zap.Error(runErr))
	}

	a.logger.Info("application shutting down")

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	_ = a.logger.Sync()
	return runErr
}

// Shutdown drains both servers and releases every resource.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if a.grpcServer != nil {
		if err := a.grpcServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		a.logger.Info("graceful shutdown completed successfully")
	}
	return errors.Join(errs...)
}

// Close releases the cache client and the database pool.
func (a *App) Close() error {
	var errs []error
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
		errs = append(errs, err)
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
