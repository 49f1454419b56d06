package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/auth"
	"github.com/godilite/feedback-server/internal/repository/models"
	"go.uber.org/zap"
)

const (
	MinPasswordLength = 8

	defaultFormTitle = "Customer Feedback"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(u models.User) (string, time.Time, error)
}

// AdminService covers login, user management, settings and seeding.
type AdminService struct {
	users    UserRepository
	settings SettingsRepository
	centers  CenterRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

func NewAdminService(users UserRepository, settings SettingsRepository, centers CenterRepository, tokens TokenIssuer, logger *zap.Logger) *AdminService {
	if users == nil || settings == nil || centers == nil {
		panic("nil repository provided to NewAdminService")
	}
	if tokens == nil {
		panic("nil TokenIssuer provided to NewAdminService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:    users,
		settings: settings,
		centers:  centers,
		tokens:   tokens,
		logger:   logger.Named("admin-service"),
	}
}

// Login checks the credentials and issues a session token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AdminService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, invalidf("email and password are required")
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	u, err := s.users.FindByEmail(dbCtx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login with unknown email")
			return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return LoginResult{}, storageError("find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Info("login with wrong password", zap.String("user", u.ID))
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", zap.String("user", u.ID), zap.String("role", u.Role))
	return LoginResult{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	users, err := s.users.List(dbCtx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// CreateUser validates req, hashes the password and stores the user. The
// role defaults to models.RoleUser.
func (s *AdminService) CreateUser(ctx context.Context, req CreateUserRequest) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		return models.User{}, invalidf("invalid email %q", req.Email)
	}
	if len(req.Password) < MinPasswordLength {
		return models.User{}, invalidf("password must be at least %d characters", MinPasswordLength)
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleAdmin, models.RoleUser:
	default:
		return models.User{}, invalidf("unknown role %q", req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.users.Create(dbCtx, &u); err != nil {
		return models.User{}, storageError("create user", err)
	}
	s.logger.Info("user created", zap.String("user", u.ID), zap.String("role", u.Role))
	return u, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
// It reports whether a user was created.
func (s *AdminService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.CreateUser(ctx, CreateUserRequest{Name: name, Email: email, Password: password, Role: models.RoleAdmin})
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SeedCenters inserts or updates every center.
func (s *AdminService) SeedCenters(ctx context.Context, centers []models.ServiceCenter) error {
	for _, c := range centers {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" || strings.TrimSpace(c.Name) == "" {
			return invalidf("service center needs an id and a name")
		}
		dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
		err := s.centers.Upsert(dbCtx, c)
		cancel()
		if err != nil {
			return storageError("upsert service center", err)
		}
	}
	s.logger.Info("service centers seeded", zap.Int("count", len(centers)))
	return nil
}

func DefaultSettings() models.Settings {
	return models.Settings{FeedbackFormTitle: defaultFormTitle}
}

// Settings returns the saved settings, or DefaultSettings before the first
// save.
func (s *AdminService) Settings(ctx context.Context) (models.Settings, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	settings, err := s.settings.Get(dbCtx)
	if errors.Is(err, models.ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, storageError("get settings", err)
	}
	return settings, nil
}

func (s *AdminService) SaveSettings(ctx context.Context, in models.Settings) (models.Settings, error) {
	in.AdminEmail = strings.TrimSpace(in.AdminEmail)
	in.NotificationEmail = strings.TrimSpace(in.NotificationEmail)
	in.FeedbackFormTitle = strings.TrimSpace(in.FeedbackFormTitle)

	for field, v := range map[string]string{"adminEmail": in.AdminEmail, "notificationEmail": in.NotificationEmail} {
		if v != "" && !validEmail(v) {
			return models.Settings{}, invalidf("%s %q is not a valid email", field, v)
		}
	}
	if in.FeedbackFormTitle == "" {
		in.FeedbackFormTitle = defaultFormTitle
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.settings.Save(dbCtx, &in); err != nil {
		return models.Settings{}, storageError("save settings", err)
	}
	s.logger.Info("settings saved")
	return in, nil
}
