package domain

import (
	"context"
	"time"
)

// EventInvitation represents an email address invited to an event.
type EventInvitation struct {
	ID      string    `json:"id"`
	EventID EventID   `json:"event_id"`
	Email   string    `json:"email"`
	SentAt  time.Time `json:"sent_at"`
}

// EventInvitationRepository defines storage operations for event invitations.
type EventInvitationRepository interface {
	Create(ctx context.Context, inv *EventInvitation) error
	ListByEventID(ctx context.Context, eventID EventID) ([]*EventInvitation, error)
}
