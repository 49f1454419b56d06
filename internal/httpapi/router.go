package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/godilite/feedback-server/internal/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Tokens middleware.TokenParser
	// SubmitLimiter throttles the public submission route when set.
	SubmitLimiter *middleware.RateLimiter
	// Requests observes every request; nil disables request metrics.
	Requests    middleware.RequestObserver
	Metrics     http.Handler
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	if h == nil {
		panic("nil Handler provided to NewRouter")
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Requests))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", h.Health)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api")
	{
		submit := []gin.HandlerFunc{h.SubmitFeedback}
		if cfg.SubmitLimiter != nil {
			submit = append([]gin.HandlerFunc{cfg.SubmitLimiter.Middleware()}, submit...)
		}
		api.POST("/feedback", submit...)
		api.GET("/centers", h.ListCenters)
		api.POST("/auth/login", h.Login)

		admin := api.Group("", middleware.AuthRequired(cfg.Tokens), middleware.AdminRequired())
		{
			admin.GET("/feedback", h.ListFeedback)
			admin.GET("/feedback/recent", h.RecentFeedback)
			admin.GET("/feedback/average-ratings", h.AverageRatings)
			admin.GET("/feedback/export", h.ExportFeedback)

			admin.GET("/dashboard", h.Dashboard)
			admin.GET("/reports", h.Report)
			admin.GET("/reports/series", h.DailySeries)

			admin.GET("/settings", h.GetSettings)
			admin.POST("/settings", h.SaveSettings)
			admin.GET("/users", h.ListUsers)
			admin.POST("/users", h.CreateUser)
		}
	}

	return r
}
