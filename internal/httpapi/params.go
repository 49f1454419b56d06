package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/godilite/feedback-server/internal/service"
)

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidInput, name)
	}
	return v, nil
}

func (h *Handler) interval(c *gin.Context) (from, to time.Time, tz string, err error) {
	tz = strings.TrimSpace(c.Query("tz"))
	loc, err := h.reports.Location(tz)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	if from, err = service.ParseBound(c.Query("from"), loc, false); err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	if to, err = service.ParseBound(c.Query("to"), loc, true); err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	return from, to, tz, nil
}

func (h *Handler) reportQuery(c *gin.Context) (service.ReportQuery, error) {
	from, to, tz, err := h.interval(c)
	if err != nil {
		return service.ReportQuery{}, err
	}
	return service.ReportQuery{From: from, To: to, CenterID: c.Query("centerId"), Timezone: tz}, nil
}

func (h *Handler) listQuery(c *gin.Context) (service.ListQuery, error) {
	from, to, tz, err := h.interval(c)
	if err != nil {
		return service.ListQuery{}, err
	}
	q := service.ListQuery{
		CenterID: c.Query("centerId"),
		From:     from,
		To:       to,
		Query:    c.Query("q"),
		Timezone: tz,
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		return service.ListQuery{}, err
	}
	if q.PageSize, err = queryInt(c, "pageSize"); err != nil {
		return service.ListQuery{}, err
	}
	if raw := strings.TrimSpace(c.Query("minRating")); raw != "" {
		if q.MinRating, err = strconv.ParseFloat(raw, 64); err != nil {
			return service.ListQuery{}, fmt.Errorf("%w: minRating must be a number", service.ErrInvalidInput)
		}
	}
	return q, nil
}
