package domain

import (
	"context"
	"time"
)

// User represents the signed-in user: display name plus the private list of
// saved events. Mutations return new instances; a User value is never changed
// in place.
type User struct {
	ID            UserID     `json:"id"`
	DisplayName   string     `json:"display_name"`
	SavedEventIDs EventIDSet `json:"saved_event_ids"`
}

// NewUser returns a User with the given id and display name and no saved events.
func NewUser(id UserID, displayName string) User {
	return User{ID: id, DisplayName: displayName, SavedEventIDs: NewEventIDSet()}
}

// WithDisplayName returns a copy of the user with the display name replaced.
func (u User) WithDisplayName(name string) User {
	u.DisplayName = name
	return u
}

// SaveEvent returns a copy of the user with eventID added to the saved set.
func (u User) SaveEvent(eventID EventID) User {
	u.SavedEventIDs = u.SavedEventIDs.Add(eventID)
	return u
}

// RemoveSavedEvent returns a copy of the user with eventID removed from the
// saved set. Removing an id that is not saved is a no-op.
func (u User) RemoveSavedEvent(eventID EventID) User {
	u.SavedEventIDs = u.SavedEventIDs.Remove(eventID)
	return u
}

// HasEventSaved reports whether eventID is in the user's saved set.
func (u User) HasEventSaved(eventID EventID) bool {
	return u.SavedEventIDs.Contains(eventID)
}

// UserRepository defines the interface for user storage and the anonymous
// credential-based authentication session.
type UserRepository interface {
	GetUser(ctx context.Context, id UserID) (User, error)
	// GetCurrentUser returns the signed-in user, or ErrSignInRequired when no
	// session is active.
	GetCurrentUser(ctx context.Context) (User, error)
	SaveUser(ctx context.Context, user User) error
	// SubscribeToCurrentUser fires fn on every session change (sign-in, sign-out,
	// profile update). fn receives nil after sign-out. Unsubscribe is idempotent.
	SubscribeToCurrentUser(fn func(*User)) (unsubscribe func(), err error)
	// SignIn authenticates with the credential's synthetic account. When
	// createIfMissing is true a missing account is created on the fly.
	SignIn(ctx context.Context, credential Credential, createIfMissing bool) (User, error)
	SignOut(ctx context.Context) error
	// DeleteCurrentUser re-authenticates with the credential and deletes the account.
	DeleteCurrentUser(ctx context.Context, credential Credential) error
}

// SignInProvider is an interactive sign-in flow resolved outside the core
// (typically by a UI). Request blocks until the flow completes and reports
// whether the user ended up signed in.
type SignInProvider interface {
	Request(ctx context.Context) (bool, error)
}

// SignInService orchestrates authentication: at most one provider may be
// registered at a time.
type SignInService interface {
	// RegisterProvider installs the interactive provider. Registering a second
	// provider fails with ErrProviderRegistered.
	RegisterProvider(provider SignInProvider) error
	UnregisterProvider()
	// RequireCurrentUser returns the current user, driving the registered
	// provider through an interactive sign-in when no session is active.
	RequireCurrentUser(ctx context.Context) (User, error)
	// SignIn creates a fresh credential, signs in with create-if-missing
	// semantics, stores the credential locally, and returns it for display.
	SignIn(ctx context.Context) (Credential, error)
	// SignInWithCredential pairs this device with an existing account; the
	// account is not created when missing.
	SignInWithCredential(ctx context.Context, codes []string) (User, error)
	SubscribeToCurrentUser(fn func(*User)) (unsubscribe func(), err error)
	// DeleteAccount deletes the signed-in account using the stored credential.
	// Without a stored credential it is a silent no-op.
	DeleteAccount(ctx context.Context) error
}

// TokenIssuer issues session tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// PasswordHasher handles hashing and verification of the synthetic passwords
// derived from credentials. Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}
