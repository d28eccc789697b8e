package domain

import "context"

// SaveEventResult reports the outcome of saving an event to the user's list.
// AlreadySaved is true when the event was saved before and no write happened.
type SaveEventResult struct {
	Success      bool `json:"success"`
	AlreadySaved bool `json:"already_saved"`
}

// SavedEventService defines the business logic for the current user's saved
// event list. Both operations are idempotent.
type SavedEventService interface {
	SaveEvent(ctx context.Context, eventID EventID) (SaveEventResult, error)
	RemoveSavedEvent(ctx context.Context, eventID EventID) error
}
