package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"talkboard/internal/domain"
)

type userRepository struct {
	DB         *sql.DB
	hasher     domain.PasswordHasher
	tokens     domain.TokenIssuer
	verifier   domain.TokenVerifier
	logger     *slog.Logger
	sessionTTL time.Duration

	mu           sync.Mutex
	current      *domain.User
	sessionToken string
	nextSub      int
	subs         map[int]*sessionSubscriber
}

// sessionSubscriber owns a delivery mutex so that cancelling a subscription
// can wait out an in-flight callback.
type sessionSubscriber struct {
	mu      sync.Mutex
	fn      func(*domain.User)
	removed bool
}

// NewUserRepository returns a UserRepository backed by Postgres. Accounts are
// keyed by a synthetic handle derived from the credential; the remaining half
// of the credential acts as the password and is stored hashed. The signed-in
// session is held in process.
func NewUserRepository(db *sql.DB, hasher domain.PasswordHasher, tokens domain.TokenIssuer, verifier domain.TokenVerifier, sessionTTL time.Duration, logger *slog.Logger) domain.UserRepository {
	return &userRepository{
		DB:         db,
		hasher:     hasher,
		tokens:     tokens,
		verifier:   verifier,
		logger:     logger,
		sessionTTL: sessionTTL,
		subs:       make(map[int]*sessionSubscriber),
	}
}

// splitCredential derives the account handle and secret from the four codes.
// The first two codes locate the row, the last two never leave the client
// unhashed.
func splitCredential(credential domain.Credential) (handle, secret string) {
	codes := credential.Codes()
	return strings.Join(codes[:2], "-"), strings.Join(codes[2:], "-")
}

func (r *userRepository) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	query := `
		SELECT id, display_name, saved_event_ids
		FROM users
		WHERE id = $1
	`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetCurrentUser(ctx context.Context) (domain.User, error) {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return domain.User{}, domain.ErrSignInRequired
	}
	// Session expiry is discovered lazily, on the first read past the TTL.
	// Subscribers see it as a sign-out.
	if _, err := r.verifier.Verify(r.sessionToken); err != nil {
		r.logger.Debug("session token rejected", "error", err)
		r.current = nil
		r.sessionToken = ""
		r.mu.Unlock()
		r.notifySubscribers(nil)
		return domain.User{}, domain.ErrSignInRequired
	}
	user := *r.current
	r.mu.Unlock()
	return user, nil
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET display_name = $2, saved_event_ids = $3
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, user.ID, user.DisplayName, pq.Array(savedIDStrings(user)))
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

	r.mu.Lock()
	isCurrent := r.current != nil && r.current.ID.Equal(user.ID)
	if isCurrent {
		r.current = &user
	}
	r.mu.Unlock()
	if isCurrent {
		r.notifySubscribers(&user)
	}
	return nil
}

// SubscribeToCurrentUser registers fn for session changes. The returned cancel
// function is idempotent and returns only once any in-flight delivery to fn
// has finished; it must not be called from inside fn.
func (r *userRepository) SubscribeToCurrentUser(fn func(*domain.User)) (func(), error) {
	sub := &sessionSubscriber{fn: fn}
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = sub
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			// Taking the delivery mutex waits out a callback that already
			// started before the map entry was removed.
			sub.mu.Lock()
			sub.removed = true
			sub.mu.Unlock()
		})
	}, nil
}

func (r *userRepository) SignIn(ctx context.Context, credential domain.Credential, createIfMissing bool) (domain.User, error) {
	handle, secret := splitCredential(credential)

	query := `
		SELECT id, display_name, credential_hash, saved_event_ids
		FROM users
		WHERE credential_handle = $1
	`
	var user domain.User
	var hash string
	var savedIDs pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, handle).Scan(&user.ID, &user.DisplayName, &hash, &savedIDs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !createIfMissing {
			return domain.User{}, fmt.Errorf("unknown credential: %w", domain.ErrNotFound)
		}
		user, err = r.createAccount(ctx, handle, secret)
		if err != nil {
			return domain.User{}, err
		}
	case err != nil:
		return domain.User{}, err
	default:
		if err := r.hasher.Compare(hash, secret); err != nil {
			// A handle collision with the wrong secret is indistinguishable
			// from an unknown credential on purpose.
			return domain.User{}, fmt.Errorf("unknown credential: %w", domain.ErrNotFound)
		}
		if user.SavedEventIDs, err = eventIDSetFromStrings(savedIDs); err != nil {
			return domain.User{}, err
		}
	}

	token, err := r.tokens.Issue(user.ID.String(), r.sessionTTL)
	if err != nil {
		return domain.User{}, fmt.Errorf("issue session token: %w", err)
	}

	r.mu.Lock()
	r.current = &user
	r.sessionToken = token
	r.mu.Unlock()
	r.notifySubscribers(&user)
	return user, nil
}

func (r *userRepository) createAccount(ctx context.Context, handle, secret string) (domain.User, error) {
	hash, err := r.hasher.Hash(secret)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash credential: %w", err)
	}
	user := domain.NewUser(domain.GenerateUserID(), "")
	query := `
		INSERT INTO users (id, display_name, credential_handle, credential_hash, saved_event_ids)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.ExecContext(ctx, query, user.ID, user.DisplayName, handle, hash, pq.Array([]string{})); err != nil {
		return domain.User{}, err
	}
	r.logger.Info("created account", "user_id", user.ID.String())
	return user, nil
}

func (r *userRepository) SignOut(ctx context.Context) error {
	r.mu.Lock()
	r.current = nil
	r.sessionToken = ""
	r.mu.Unlock()
	r.notifySubscribers(nil)
	return nil
}

func (r *userRepository) DeleteCurrentUser(ctx context.Context, credential domain.Credential) error {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	if current == nil {
		return domain.ErrSignInRequired
	}

	handle, secret := splitCredential(credential)
	var hash string
	err := r.DB.QueryRowContext(ctx, `SELECT credential_hash FROM users WHERE id = $1 AND credential_handle = $2`,
		current.ID, handle).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("credential does not match the signed-in account: %w", domain.ErrForbidden)
		}
		return err
	}
	if err := r.hasher.Compare(hash, secret); err != nil {
		return fmt.Errorf("credential does not match the signed-in account: %w", domain.ErrForbidden)
	}

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, current.ID); err != nil {
		return err
	}

	r.mu.Lock()
	r.current = nil
	r.sessionToken = ""
	r.mu.Unlock()
	r.notifySubscribers(nil)
	return nil
}

func (r *userRepository) notifySubscribers(user *domain.User) {
	r.mu.Lock()
	subs := make([]*sessionSubscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	r.mu.Unlock()
	for _, sub := range subs {
		sub.mu.Lock()
		if !sub.removed {
			sub.fn(user)
		}
		sub.mu.Unlock()
	}
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var savedIDs pq.StringArray
	if err := row.Scan(&user.ID, &user.DisplayName, &savedIDs); err != nil {
		return domain.User{}, err
	}
	var err error
	if user.SavedEventIDs, err = eventIDSetFromStrings(savedIDs); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func savedIDStrings(user domain.User) []string {
	ids := user.SavedEventIDs.IDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func eventIDSetFromStrings(raw []string) (domain.EventIDSet, error) {
	ids := make([]domain.EventID, 0, len(raw))
	for _, s := range raw {
		id, err := domain.NewEventID(s)
		if err != nil {
			return domain.EventIDSet{}, fmt.Errorf("stored event id: %w", err)
		}
		ids = append(ids, id)
	}
	return domain.NewEventIDSet(ids...), nil
}
