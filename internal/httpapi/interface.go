package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/godilite/feedback-server/internal/aggregation"
	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/godilite/feedback-server/internal/service"
)

type FeedbackService interface {
	Submit(ctx context.Context, req service.SubmitRequest) (models.Feedback, error)
	List(ctx context.Context, q service.ListQuery) (service.FeedbackPage, error)
	Recent(ctx context.Context, limit int) ([]models.Feedback, error)
	Centers(ctx context.Context) ([]models.ServiceCenter, error)
	Export(ctx context.Context, w io.Writer, q service.ListQuery) (int, error)
	ExportFilename() string
}

type ReportService interface {
	Location(name string) (*time.Location, error)
	Averages(ctx context.Context, q service.ReportQuery) (service.AverageRatings, error)
	DailySeries(ctx context.Context, q service.ReportQuery) ([]aggregation.SeriesPoint, error)
	Report(ctx context.Context, q service.ReportQuery) (service.Report, error)
	Dashboard(ctx context.Context, timezone string) (service.Dashboard, error)
}

type AdminService interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, req service.CreateUserRequest) (models.User, error)
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, in models.Settings) (models.Settings, error)
}

// Pinger reports whether the store is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}
