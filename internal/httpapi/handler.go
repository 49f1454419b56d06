// Package httpapi serves the feedback form, the admin dashboard and the
// reports over HTTP with gin.
package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	feedback FeedbackService
	reports  ReportService
	admin    AdminService
	db       Pinger
	logger   *zap.Logger
}

func NewHandler(feedback FeedbackService, reports ReportService, admin AdminService, db Pinger, logger *zap.Logger) *Handler {
	if feedback == nil || reports == nil || admin == nil {
		panic("nil service provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		feedback: feedback,
		reports:  reports,
		admin:    admin,
		db:       db,
		logger:   logger.Named("http"),
	}
}

// SubmitFeedback stores one form submission.
// POST /api/feedback?center=ID
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.CenterID = c.Query("center")

	created, err := h.feedback.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCenters returns the service centers for the form picker.
// GET /api/centers
func (h *Handler) ListCenters(c *gin.Context) {
	centers, err := h.feedback.Centers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, centers)
}

// ListFeedback returns one filtered page of feedback.
// GET /api/feedback
func (h *Handler) ListFeedback(c *gin.Context) {
	q, err := h.listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.feedback.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// RecentFeedback returns the newest submissions.
// GET /api/feedback/recent?limit=N
func (h *Handler) RecentFeedback(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.feedback.Recent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AverageRatings returns the category breakdown over the filter.
// GET /api/feedback/average-ratings
func (h *Handler) AverageRatings(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, err := h.reports.Averages(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, avg)
}

// ExportFeedback downloads every matching record as CSV. The file is built
// in memory so that a failure still yields a JSON error.
// GET /api/feedback/export
func (h *Handler) ExportFeedback(c *gin.Context) {
	q, err := h.listQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.feedback.Export(c.Request.Context(), &buf, q); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.feedback.ExportFilename()+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Dashboard returns the month-over-month dashboard.
// GET /api/dashboard?tz=Zone
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context(), c.Query("tz"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Report returns the full report for a window.
// GET /api/reports
func (h *Handler) Report(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.reports.Report(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DailySeries returns only the per-day points of a window.
// GET /api/reports/series
func (h *Handler) DailySeries(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	points, err := h.reports.DailySeries(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a session token.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}
	res, err := h.admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	u, err := h.admin.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.admin.Settings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// POST /api/settings
func (h *Handler) SaveSettings(c *gin.Context) {
	var in models.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	saved, err := h.admin.SaveSettings(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Health reports liveness and whether the store answers a ping.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
