package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talkboard/internal/domain"
)

type roomRepository struct {
	DB *sql.DB
}

// NewRoomRepository returns a domain.RoomRepository implemented with Postgres.
func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &roomRepository{DB: db}
}

func (r *roomRepository) Save(ctx context.Context, room domain.Room) error {
	query := `
		INSERT INTO rooms (id, event_id, name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description
	`
	_, err := r.DB.ExecContext(ctx, query, room.ID, room.EventID, room.Name, room.Description, room.CreatedBy, room.CreatedAt)
	return err
}

func (r *roomRepository) FindByID(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	query := `
		SELECT id, event_id, name, description, created_by, created_at
		FROM rooms
		WHERE id = $1
	`
	var room domain.Room
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.EventID, &room.Name, &room.Description, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	return room, nil
}

func (r *roomRepository) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Room, error) {
	query := `
		SELECT id, event_id, name, description, created_by, created_at
		FROM rooms
		WHERE event_id = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.EventID, &room.Name, &room.Description, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Delete(ctx context.Context, id domain.RoomID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
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
