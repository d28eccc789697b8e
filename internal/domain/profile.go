package domain

import "context"

// Profile is the public face of a user: the fields other attendees may see.
// The private saved-events list lives on User; how an adapter partitions the
// two document halves in storage is its own concern.
type Profile struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	PhotoURL    string `json:"photo_url"`
}

// ProfileRepository defines the interface for public profile storage.
type ProfileRepository interface {
	Save(ctx context.Context, profile Profile) error
	FindByID(ctx context.Context, id UserID) (Profile, error)
	// SubscribeToProfile fires fn on every change to the profile.
	SubscribeToProfile(id UserID, fn func(Profile)) (unsubscribe func(), err error)
	// SubscribeToProfiles fires fn with the full profile list on every change to
	// any of the given profiles.
	SubscribeToProfiles(ids []UserID, fn func([]Profile)) (unsubscribe func(), err error)
	Delete(ctx context.Context, id UserID) error
}
