package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
	"github.com/google/uuid"
)

// FeedbackRepository stores the append-only feedback log.
type FeedbackRepository struct {
	conn
}

func NewFeedbackRepository(db *sql.DB, dialect Dialect) *FeedbackRepository {
	return &FeedbackRepository{conn{db: db, dialect: dialect}}
}

// Create inserts f, assigning an ID and creation time when they are unset.
func (r *FeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	f.CreatedAt = f.CreatedAt.UTC()

	const query = `
		INSERT INTO feedback (id, created_at, service_rating, condition_rating, fee_rating, duration_rating, comment, service_center_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		f.ID, formatTime(f.CreatedAt),
		f.ServiceRating, f.ConditionRating, f.FeeRating, f.DurationRating,
		f.Comment, f.ServiceCenterID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert feedback %s: %w", f.ID, models.ErrDuplicate)
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// List returns matching feedback newest first, with the service center
// joined. A zero Limit returns every match.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	where, args := whereClause(filter)

	var b strings.Builder
	b.WriteString(`
		SELECT f.id, f.created_at, f.service_rating, f.condition_rating, f.fee_rating, f.duration_rating,
			f.comment, f.service_center_id, c.name, c.location
		FROM feedback AS f
		LEFT JOIN service_centers AS c ON c.id = f.service_center_id`)
	b.WriteString(where)
	b.WriteString(` ORDER BY f.created_at DESC, f.id DESC`)
	if filter.Limit > 0 {
		b.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

// Count returns the number of matches, ignoring Limit and Offset.
func (r *FeedbackRepository) Count(ctx context.Context, filter models.FeedbackFilter) (int, error) {
	where, args := whereClause(filter)
	query := `SELECT COUNT(*) FROM feedback AS f` + where

	var n int
	if err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

func whereClause(filter models.FeedbackFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.CenterID != "" {
		conds = append(conds, "f.service_center_id = ?")
		args = append(args, filter.CenterID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "f.created_at >= ?")
		args = append(args, formatTime(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "f.created_at <= ?")
		args = append(args, formatTime(filter.To))
	}
	if filter.MinRating > 0 {
		conds = append(conds, "(f.service_rating + f.condition_rating + f.fee_rating + f.duration_rating) >= CAST(? AS REAL)")
		args = append(args, filter.MinRating*4)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, `LOWER(f.comment) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeedback(s scanner) (models.Feedback, error) {
	var (
		f          models.Feedback
		createdAt  string
		ratings    [4]sql.NullInt64
		centerName sql.NullString
		centerLoc  sql.NullString
	)
	err := s.Scan(&f.ID, &createdAt, &ratings[0], &ratings[1], &ratings[2], &ratings[3],
		&f.Comment, &f.ServiceCenterID, &centerName, &centerLoc)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("scan feedback row: %w", err)
	}

	f.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("parse created_at of feedback %s: %w", f.ID, err)
	}

	values := [4]*int{&f.ServiceRating, &f.ConditionRating, &f.FeeRating, &f.DurationRating}
	for i, v := range ratings {
		*values[i] = models.MissingRating
		if v.Valid {
			*values[i] = int(v.Int64)
		}
	}

	if centerName.Valid {
		f.ServiceCenter = &models.ServiceCenter{
			ID:       f.ServiceCenterID,
			Name:     centerName.String,
			Location: centerLoc.String,
		}
	}
	return f, nil
}
