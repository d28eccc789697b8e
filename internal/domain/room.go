package domain

import (
	"context"
	"time"
)

// Room represents a named space within an event. A room belongs to exactly one
// event; mutating it requires event-creator permission.
type Room struct {
	ID          RoomID    `json:"id"`
	EventID     EventID   `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   UserID    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRoom creates a room with a fresh id for the given event.
func NewRoom(eventID EventID, name, description string, createdBy UserID, createdAt time.Time) Room {
	return Room{
		ID:          GenerateRoomID(),
		EventID:     eventID,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
	}
}

// WithDetails returns a copy of the room with name and description replaced.
func (r Room) WithDetails(name, description string) Room {
	r.Name = name
	r.Description = description
	return r
}

// RoomRepository defines the interface for room storage.
type RoomRepository interface {
	Save(ctx context.Context, room Room) error
	FindByID(ctx context.Context, id RoomID) (Room, error)
	FindByEventID(ctx context.Context, eventID EventID) ([]Room, error)
	Delete(ctx context.Context, id RoomID) error
}

// RoomInput carries the editable room fields.
type RoomInput struct {
	Name        string `validate:"required"`
	Description string
}

// RoomService defines the business logic for room management. Every mutation
// requires the current user to be the event creator.
type RoomService interface {
	CreateRoom(ctx context.Context, eventID EventID, in RoomInput) (Room, error)
	UpdateRoom(ctx context.Context, eventID EventID, roomID RoomID, in RoomInput) (Room, error)
	DeleteRoom(ctx context.Context, eventID EventID, roomID RoomID) error
	ListEventRooms(ctx context.Context, eventID EventID) ([]Room, error)
}
