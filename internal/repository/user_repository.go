package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	conn
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{conn{db: db, dialect: dialect}}
}

// Create inserts u. Emails are stored lower-cased and are unique; a clash
// returns models.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	const query = `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query), u.ID, u.Name, u.Email, u.PasswordHash, u.Role, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Email, models.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, r.rebind(query), strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %q: %w", email, models.ErrNotFound)
	}
	return u, err
}

// List returns users oldest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at FROM users ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func scanUser(s scanner) (models.User, error) {
	var u models.User
	var createdAt string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("scan user row: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return models.User{}, fmt.Errorf("parse created_at of user %s: %w", u.ID, err)
	}
	u.CreatedAt = t
	return u, nil
}
