package domain

import "errors"

// Sentinel errors shared across the domain. Services return these (possibly
// wrapped with fmt.Errorf and %w) so callers can match with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist at operation time.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the authenticated actor lacks authority for the
	// requested mutation (not the event creator, not the talk proposer).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned on malformed input at the value-object boundary:
	// empty ids, malformed credential codes, cross-entity reference mismatches.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSignInRequired is returned when an operation needs an authenticated user
	// and none is available.
	ErrSignInRequired = errors.New("sign-in required")

	// ErrNoSignInProvider is returned by RequireCurrentUser when no interactive
	// sign-in provider has been registered.
	ErrNoSignInProvider = errors.New("no sign-in provider available")

	// ErrSignInCancelled is returned when the interactive sign-in flow failed or
	// was cancelled by the user.
	ErrSignInCancelled = errors.New("sign-in was cancelled or failed")

	// ErrProviderRegistered is returned when registering a second sign-in provider;
	// at most one may be active at a time.
	ErrProviderRegistered = errors.New("a sign-in provider is already registered")
)
