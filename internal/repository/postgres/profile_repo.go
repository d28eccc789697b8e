package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talkboard/internal/domain"
)

type profileRepository struct {
	DB       *sql.DB
	notifier *Notifier
}

// NewProfileRepository returns a ProfileRepository backed by Postgres.
func NewProfileRepository(db *sql.DB, notifier *Notifier) domain.ProfileRepository {
	return &profileRepository{
		DB:       db,
		notifier: notifier,
	}
}

func (r *profileRepository) Save(ctx context.Context, profile domain.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, bio, photo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			photo_url = EXCLUDED.photo_url
	`
	_, err := r.DB.ExecContext(ctx, query, profile.ID, profile.DisplayName, profile.Bio, profile.PhotoURL)
	if err != nil {
		return err
	}
	return notify(ctx, r.DB, channelProfiles, profile.ID.String())
}

func (r *profileRepository) FindByID(ctx context.Context, id domain.UserID) (domain.Profile, error) {
	query := `
		SELECT id, display_name, bio, photo_url
		FROM profiles
		WHERE id = $1
	`
	var p domain.Profile
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.DisplayName, &p.Bio, &p.PhotoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *profileRepository) SubscribeToProfile(id domain.UserID, fn func(domain.Profile)) (func(), error) {
	if r.notifier == nil {
		return nil, errors.New("no change notifier configured")
	}
	cancel := r.notifier.Subscribe(channelProfiles, func(payload string) {
		if payload != id.String() {
			return
		}
		profile, err := r.FindByID(context.Background(), id)
		if err != nil {
			return
		}
		fn(profile)
	})
	return cancel, nil
}

func (r *profileRepository) SubscribeToProfiles(ids []domain.UserID, fn func([]domain.Profile)) (func(), error) {
	if r.notifier == nil {
		return nil, errors.New("no change notifier configured")
	}
	watched := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		watched[id.String()] = struct{}{}
	}
	cancel := r.notifier.Subscribe(channelProfiles, func(payload string) {
		if _, ok := watched[payload]; !ok {
			return
		}
		profiles := make([]domain.Profile, 0, len(ids))
		for _, id := range ids {
			profile, err := r.FindByID(context.Background(), id)
			if err != nil {
				// Deleted or never-created profiles just drop out of the list.
				continue
			}
			profiles = append(profiles, profile)
		}
		fn(profiles)
	})
	return cancel, nil
}

func (r *profileRepository) Delete(ctx context.Context, id domain.UserID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
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
	return notify(ctx, r.DB, channelProfiles, id.String())
}
