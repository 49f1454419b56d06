package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// SettingsRepository persists the single dashboard settings row.
type SettingsRepository struct {
	conn
}

func NewSettingsRepository(db *sql.DB, dialect Dialect) *SettingsRepository {
	return &SettingsRepository{conn{db: db, dialect: dialect}}
}

// Get returns models.ErrNotFound until settings have been saved once.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	const query = `SELECT admin_email, notification_email, feedback_form_title, updated_at FROM settings WHERE id = 1`

	var s models.Settings
	var updatedAt string
	err := r.db.QueryRowContext(ctx, query).Scan(&s.AdminEmail, &s.NotificationEmail, &s.FeedbackFormTitle, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Settings{}, fmt.Errorf("settings: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Settings{}, fmt.Errorf("parse settings updated_at: %w", err)
	}
	return s, nil
}

// Save upserts the settings row and stamps UpdatedAt.
func (r *SettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	s.UpdatedAt = time.Now().UTC()

	const query = `
		INSERT INTO settings (id, admin_email, notification_email, feedback_form_title, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			admin_email = excluded.admin_email,
			notification_email = excluded.notification_email,
			feedback_form_title = excluded.feedback_form_title,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query), s.AdminEmail, s.NotificationEmail, s.FeedbackFormTitle, formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
