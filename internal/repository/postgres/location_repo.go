package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talkboard/internal/domain"
)

type locationRepository struct {
	DB *sql.DB
}

// NewLocationRepository returns a domain.LocationRepository implemented with
// Postgres.
func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{DB: db}
}

func (r *locationRepository) Save(ctx context.Context, location domain.Location) error {
	query := `
		INSERT INTO locations (id, event_id, name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description
	`
	_, err := r.DB.ExecContext(ctx, query, location.ID, location.EventID, location.Name, location.Description, location.CreatedBy, location.CreatedAt)
	return err
}

func (r *locationRepository) FindByID(ctx context.Context, id domain.LocationID) (domain.Location, error) {
	query := `
		SELECT id, event_id, name, description, created_by, created_at
		FROM locations
		WHERE id = $1
	`
	var location domain.Location
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&location.ID, &location.EventID, &location.Name, &location.Description, &location.CreatedBy, &location.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, err
	}
	return location, nil
}

func (r *locationRepository) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Location, error) {
	query := `
		SELECT id, event_id, name, description, created_by, created_at
		FROM locations
		WHERE event_id = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]domain.Location, 0)
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.ID, &location.EventID, &location.Name, &location.Description, &location.CreatedBy, &location.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

func (r *locationRepository) Delete(ctx context.Context, id domain.LocationID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
