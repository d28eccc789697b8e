package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talkboard/internal/domain"
)

type talkRepository struct {
	DB       *sql.DB
	notifier *Notifier
}

// NewTalkRepository returns a TalkRepository backed by Postgres. Change
// notifications carry the owning event id so per-event subscriptions only
// reload their own list.
func NewTalkRepository(db *sql.DB, notifier *Notifier) domain.TalkRepository {
	return &talkRepository{
		DB:       db,
		notifier: notifier,
	}
}

const talkColumns = `id, event_id, user_id, name, pitch, proposed_start, approved_start, location_id, status, submitted_at`

func (r *talkRepository) Save(ctx context.Context, t domain.Talk) error {
	query := `
		INSERT INTO talks (id, event_id, user_id, name, pitch, proposed_start, approved_start, location_id, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			pitch = EXCLUDED.pitch,
			proposed_start = EXCLUDED.proposed_start,
			approved_start = EXCLUDED.approved_start,
			location_id = EXCLUDED.location_id,
			status = EXCLUDED.status
	`
	var approved sql.NullTime
	if t.ApprovedStart != nil {
		approved = sql.NullTime{Time: *t.ApprovedStart, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.EventID, t.UserID, t.Name, t.Pitch,
		t.ProposedStart, approved, t.LocationID, string(t.Status), t.SubmittedAt,
	)
	if err != nil {
		return err
	}
	return notify(ctx, r.DB, channelTalks, t.EventID.String())
}

func (r *talkRepository) FindByID(ctx context.Context, id domain.TalkID) (domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE id = $1`
	t, err := scanTalk(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Talk{}, domain.ErrNotFound
		}
		return domain.Talk{}, err
	}
	return t, nil
}

func (r *talkRepository) FindByEventID(ctx context.Context, eventID domain.EventID) ([]domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE event_id = $1 ORDER BY submitted_at ASC`
	return r.queryTalks(ctx, query, eventID)
}

func (r *talkRepository) FindByEventIDAndStatus(ctx context.Context, eventID domain.EventID, status domain.TalkStatus) ([]domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE event_id = $1 AND status = $2 ORDER BY submitted_at ASC`
	return r.queryTalks(ctx, query, eventID, string(status))
}

func (r *talkRepository) SubscribeByEventID(eventID domain.EventID, fn func([]domain.Talk)) (func(), error) {
	if r.notifier == nil {
		return nil, errors.New("no change notifier configured")
	}
	cancel := r.notifier.Subscribe(channelTalks, func(payload string) {
		if payload != eventID.String() {
			return
		}
		talks, err := r.FindByEventID(context.Background(), eventID)
		if err != nil {
			return
		}
		fn(talks)
	})
	return cancel, nil
}

func (r *talkRepository) Delete(ctx context.Context, id domain.TalkID) error {
	// The event id is needed for the notification payload, so fetch before
	// deleting.
	talk, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM talks WHERE id = $1`, id); err != nil {
		return err
	}
	return notify(ctx, r.DB, channelTalks, talk.EventID.String())
}

func (r *talkRepository) queryTalks(ctx context.Context, query string, args ...any) ([]domain.Talk, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	talks := make([]domain.Talk, 0)
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, err
		}
		talks = append(talks, t)
	}
	return talks, rows.Err()
}

func scanTalk(row rowScanner) (domain.Talk, error) {
	var t domain.Talk
	var approved sql.NullTime
	var status string
	err := row.Scan(
		&t.ID, &t.EventID, &t.UserID, &t.Name, &t.Pitch,
		&t.ProposedStart, &approved, &t.LocationID, &status, &t.SubmittedAt,
	)
	if err != nil {
		return domain.Talk{}, err
	}
	if approved.Valid {
		t.ApprovedStart = &approved.Time
	}
	t.Status = domain.TalkStatus(status)
	return t, nil
}
