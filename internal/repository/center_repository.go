package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/godilite/feedback-server/internal/repository/models"
)

type CenterRepository struct {
	conn
}

func NewCenterRepository(db *sql.DB, dialect Dialect) *CenterRepository {
	return &CenterRepository{conn{db: db, dialect: dialect}}
}

// List returns every service center ordered by name.
func (r *CenterRepository) List(ctx context.Context) ([]models.ServiceCenter, error) {
	const query = `SELECT id, name, location, manager, contact_info FROM service_centers ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query service centers: %w", err)
	}
	defer rows.Close()

	var out []models.ServiceCenter
	for rows.Next() {
		var c models.ServiceCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Manager, &c.ContactInfo); err != nil {
			return nil, fmt.Errorf("scan service center row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service centers: %w", err)
	}
	return out, nil
}

func (r *CenterRepository) Get(ctx context.Context, id string) (models.ServiceCenter, error) {
	const query = `SELECT id, name, location, manager, contact_info FROM service_centers WHERE id = ?`

	var c models.ServiceCenter
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(&c.ID, &c.Name, &c.Location, &c.Manager, &c.ContactInfo)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceCenter{}, fmt.Errorf("service center %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.ServiceCenter{}, fmt.Errorf("get service center %q: %w", id, err)
	}
	return c, nil
}

// Upsert inserts c or overwrites the center with the same ID.
func (r *CenterRepository) Upsert(ctx context.Context, c models.ServiceCenter) error {
	const query = `
		INSERT INTO service_centers (id, name, location, manager, contact_info)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			manager = excluded.manager,
			contact_info = excluded.contact_info
	`
	if _, err := r.db.ExecContext(ctx, r.rebind(query), c.ID, c.Name, c.Location, c.Manager, c.ContactInfo); err != nil {
		return fmt.Errorf("upsert service center %q: %w", c.ID, err)
	}
	return nil
}
