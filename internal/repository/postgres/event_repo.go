package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talkboard/internal/domain"
)

type eventRepository struct {
	DB       *sql.DB
	notifier *Notifier
}

// NewEventRepository returns an EventRepository backed by Postgres. The
// notifier may be nil, in which case Subscribe fails but reads and writes work.
func NewEventRepository(db *sql.DB, notifier *Notifier) domain.EventRepository {
	return &eventRepository{
		DB:       db,
		notifier: notifier,
	}
}

func (r *eventRepository) Save(ctx context.Context, e domain.Event) error {
	query := `
		INSERT INTO events (id, name, description, talk_rules, public_url, start_date, end_date, location, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			talk_rules = EXCLUDED.talk_rules,
			public_url = EXCLUDED.public_url,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			location = EXCLUDED.location,
			status = EXCLUDED.status
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.TalkRules, e.PublicURL,
		e.StartDate, e.EndDate, e.Location, string(e.Status), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	return notify(ctx, r.DB, channelEvents, e.ID.String())
}

func (r *eventRepository) FindByID(ctx context.Context, id domain.EventID) (domain.Event, error) {
	query := `
		SELECT id, name, description, talk_rules, public_url, start_date, end_date, location, status, created_by, created_at
		FROM events
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) FindByCreator(ctx context.Context, userID domain.UserID) ([]domain.Event, error) {
	query := `
		SELECT id, name, description, talk_rules, public_url, start_date, end_date, location, status, created_by, created_at
		FROM events
		WHERE created_by = $1
		ORDER BY start_date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Subscribe(id domain.EventID, fn func(domain.Event)) (func(), error) {
	if r.notifier == nil {
		return nil, errors.New("no change notifier configured")
	}
	cancel := r.notifier.Subscribe(channelEvents, func(payload string) {
		if payload != id.String() {
			return
		}
		event, err := r.FindByID(context.Background(), id)
		if err != nil {
			return
		}
		fn(event)
	})
	return cancel, nil
}

func (r *eventRepository) Delete(ctx context.Context, id domain.EventID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
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
	return notify(ctx, r.DB, channelEvents, id.String())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *eventRepository) scanOne(row rowScanner) (domain.Event, error) {
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}
	return e, nil
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	var status string
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.TalkRules, &e.PublicURL,
		&e.StartDate, &e.EndDate, &e.Location, &status, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}
