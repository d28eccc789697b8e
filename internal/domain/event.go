package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventStatusActive   EventStatus = "active"
	EventStatusInactive EventStatus = "inactive"
)

// Event represents a gathering to which talks are submitted. Events are
// immutable: edits go through WithDetails, which returns a new instance and
// preserves id, creation date, status, and creator.
type Event struct {
	ID          EventID     `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TalkRules   string      `json:"talk_rules"`
	PublicURL   string      `json:"public_url"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Location    string      `json:"location"`
	Status      EventStatus `json:"status"`
	CreatedBy   UserID      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewEvent creates an active event with a fresh id and the given creation time.
// The public URL is derived from the generated id.
func NewEvent(name, description, talkRules, location string, startDate, endDate time.Time, createdBy UserID, publicBaseURL string, createdAt time.Time) Event {
	id := GenerateEventID()
	return Event{
		ID:          id,
		Name:        name,
		Description: description,
		TalkRules:   talkRules,
		PublicURL:   publicBaseURL + "/" + id.String(),
		StartDate:   startDate,
		EndDate:     endDate,
		Location:    location,
		Status:      EventStatusActive,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
	}
}

// WithDetails returns a copy of the event with the editable fields replaced.
// ID, public URL, status, creator, and creation date carry over unchanged.
func (e Event) WithDetails(name, description, talkRules, location string, startDate, endDate time.Time) Event {
	updated := e
	updated.Name = name
	updated.Description = description
	updated.TalkRules = talkRules
	updated.Location = location
	updated.StartDate = startDate
	updated.EndDate = endDate
	return updated
}

// IsCreatedBy reports whether userID is the event creator.
func (e Event) IsCreatedBy(userID UserID) bool {
	return e.CreatedBy.Equal(userID)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Save(ctx context.Context, event Event) error
	FindByID(ctx context.Context, id EventID) (Event, error)
	FindByCreator(ctx context.Context, userID UserID) ([]Event, error)
	// Subscribe registers a callback fired on every change to the event until the
	// returned unsubscribe function is called. Unsubscribe is idempotent.
	Subscribe(id EventID, fn func(Event)) (unsubscribe func(), err error)
	Delete(ctx context.Context, id EventID) error
}

// CreateEventInput carries the fields needed to create an event.
type CreateEventInput struct {
	Name        string `validate:"required"`
	Description string
	TalkRules   string
	Location    string
	StartDate   time.Time `validate:"required"`
	EndDate     time.Time `validate:"required"`
	CreatedBy   UserID
}

// UpdateEventInput carries the full replacement details for an event edit.
type UpdateEventInput struct {
	Name        string `validate:"required"`
	Description string
	TalkRules   string
	Location    string
	StartDate   time.Time `validate:"required"`
	EndDate     time.Time `validate:"required"`
}

// EventService defines the business logic for event management.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (Event, error)
	GetEvent(ctx context.Context, eventID EventID) (Event, error)
	UpdateEvent(ctx context.Context, eventID EventID, in UpdateEventInput) (Event, error)
	DeleteEvent(ctx context.Context, eventID EventID) error
	// ListUserEvents merges the current user's created and saved events,
	// de-duplicated by id with created taking precedence, ascending by start date.
	ListUserEvents(ctx context.Context) ([]Event, error)
	// SendEventInvitations emails the event's public URL to the given addresses.
	// Returns how many were sent and which addresses failed.
	SendEventInvitations(ctx context.Context, eventID EventID, emails []string) (sent int, failed []string, err error)
}
