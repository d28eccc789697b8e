package domain

import (
	"context"
	"time"
)

// Location represents a place within an event where talks are scheduled.
// Talks reference locations by id; deleting a location leaves talks pointing
// at nothing, and the schedule drops those entries.
type Location struct {
	ID          LocationID `json:"id"`
	EventID     EventID    `json:"event_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedBy   UserID     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewLocation creates a location with a fresh id for the given event.
func NewLocation(eventID EventID, name, description string, createdBy UserID, createdAt time.Time) Location {
	return Location{
		ID:          GenerateLocationID(),
		EventID:     eventID,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
	}
}

// WithDetails returns a copy of the location with name and description replaced.
func (l Location) WithDetails(name, description string) Location {
	l.Name = name
	l.Description = description
	return l
}

// BelongsTo reports whether the location belongs to the given event.
func (l Location) BelongsTo(eventID EventID) bool {
	return l.EventID.Equal(eventID)
}

// LocationRepository defines the interface for location storage.
type LocationRepository interface {
	Save(ctx context.Context, location Location) error
	FindByID(ctx context.Context, id LocationID) (Location, error)
	FindByEventID(ctx context.Context, eventID EventID) ([]Location, error)
	Delete(ctx context.Context, id LocationID) error
}

// LocationInput carries the editable location fields.
type LocationInput struct {
	Name        string `validate:"required"`
	Description string
}

// LocationService defines the business logic for location management. Every
// mutation requires the current user to be the event creator.
type LocationService interface {
	CreateLocation(ctx context.Context, eventID EventID, in LocationInput) (Location, error)
	UpdateLocation(ctx context.Context, eventID EventID, locationID LocationID, in LocationInput) (Location, error)
	DeleteLocation(ctx context.Context, eventID EventID, locationID LocationID) error
	ListEventLocations(ctx context.Context, eventID EventID) ([]Location, error)
}
