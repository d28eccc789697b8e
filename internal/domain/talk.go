package domain

import (
	"context"
	"fmt"
	"time"
)

// TalkStatus is the review status of a talk proposal.
type TalkStatus string

const (
	TalkStatusPending  TalkStatus = "pending"
	TalkStatusApproved TalkStatus = "approved"
	TalkStatusRejected TalkStatus = "rejected"
)

// Talk represents a proposed or scheduled presentation tied to an event, a
// proposing user, and a location. Approved and rejected are terminal: they are
// re-entered only by submitting a new proposal.
type Talk struct {
	ID            TalkID     `json:"id"`
	EventID       EventID    `json:"event_id"`
	UserID        UserID     `json:"user_id"`
	Name          string     `json:"name"`
	Pitch         string     `json:"pitch"`
	ProposedStart time.Time  `json:"proposed_start"`
	ApprovedStart *time.Time `json:"approved_start,omitempty"`
	LocationID    LocationID `json:"location_id"`
	Status        TalkStatus `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
}

// NewTalk creates a pending talk with a fresh id.
func NewTalk(eventID EventID, userID UserID, name, pitch string, proposedStart time.Time, locationID LocationID, submittedAt time.Time) Talk {
	return Talk{
		ID:            GenerateTalkID(),
		EventID:       eventID,
		UserID:        userID,
		Name:          name,
		Pitch:         pitch,
		ProposedStart: proposedStart,
		LocationID:    locationID,
		Status:        TalkStatusPending,
		SubmittedAt:   submittedAt,
	}
}

// TalkUpdate carries an optional subset of editable talk fields; nil fields
// keep their current value.
type TalkUpdate struct {
	Name          *string
	Pitch         *string
	ProposedStart *time.Time
	LocationID    *LocationID
}

// ApplyUpdate returns a copy of the talk with the provided fields replaced.
// ID, status, submission date, and ownership are preserved.
func (t Talk) ApplyUpdate(u TalkUpdate) Talk {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Pitch != nil {
		t.Pitch = *u.Pitch
	}
	if u.ProposedStart != nil {
		t.ProposedStart = *u.ProposedStart
	}
	if u.LocationID != nil {
		t.LocationID = *u.LocationID
	}
	return t
}

// Approve transitions a pending talk to approved, scheduling it at the given
// time, or at the proposed start when at is nil.
func (t Talk) Approve(at *time.Time) (Talk, error) {
	if t.Status != TalkStatusPending {
		return Talk{}, fmt.Errorf("talk is %s, only pending talks can be approved: %w", t.Status, ErrInvalidInput)
	}
	start := t.ProposedStart
	if at != nil {
		start = *at
	}
	t.Status = TalkStatusApproved
	t.ApprovedStart = &start
	return t, nil
}

// Reject transitions a pending talk to rejected. The approved start is untouched.
func (t Talk) Reject() (Talk, error) {
	if t.Status != TalkStatusPending {
		return Talk{}, fmt.Errorf("talk is %s, only pending talks can be rejected: %w", t.Status, ErrInvalidInput)
	}
	t.Status = TalkStatusRejected
	return t, nil
}

// IsProposedBy reports whether userID is the proposing user.
func (t Talk) IsProposedBy(userID UserID) bool {
	return t.UserID.Equal(userID)
}

// EffectiveStart is the time the talk appears at in a schedule: the approved
// start when set, otherwise the proposed start.
func (t Talk) EffectiveStart() time.Time {
	if t.ApprovedStart != nil {
		return *t.ApprovedStart
	}
	return t.ProposedStart
}

// TalkRepository defines the interface for talk storage.
type TalkRepository interface {
	Save(ctx context.Context, talk Talk) error
	FindByID(ctx context.Context, id TalkID) (Talk, error)
	FindByEventID(ctx context.Context, eventID EventID) ([]Talk, error)
	FindByEventIDAndStatus(ctx context.Context, eventID EventID, status TalkStatus) ([]Talk, error)
	// SubscribeByEventID fires fn with the event's full talk list on every change.
	SubscribeByEventID(eventID EventID, fn func([]Talk)) (unsubscribe func(), err error)
	Delete(ctx context.Context, id TalkID) error
}

// SubmitTalkInput carries the fields needed to submit a talk proposal.
type SubmitTalkInput struct {
	EventID       EventID
	Name          string `validate:"required"`
	Pitch         string
	ProposedStart time.Time `validate:"required"`
	LocationID    LocationID
}

// ScheduleEntry joins a talk with the location it is scheduled in.
type ScheduleEntry struct {
	Talk     Talk     `json:"talk"`
	Location Location `json:"location"`
}

// TalkService defines the business logic for talk proposals and schedules.
type TalkService interface {
	// SubmitTalk creates a pending proposal for the current user after verifying
	// the event and location exist and the location belongs to the event.
	SubmitTalk(ctx context.Context, in SubmitTalkInput) (Talk, error)
	// UpdateTalk edits a proposal; only the proposing user may edit.
	UpdateTalk(ctx context.Context, talkID TalkID, update TalkUpdate) (Talk, error)
	// ApproveTalk schedules a pending talk; only the event creator may approve.
	// A nil time schedules the talk at its proposed start.
	ApproveTalk(ctx context.Context, talkID TalkID, at *time.Time) (Talk, error)
	// RejectTalk declines a pending talk; only the event creator may reject.
	RejectTalk(ctx context.Context, talkID TalkID) (Talk, error)
	// GetEventSchedule returns the event's talks joined to their locations,
	// ascending by effective start. Unless includeAll is set, only approved
	// talks are returned. Talks whose location was deleted are dropped.
	GetEventSchedule(ctx context.Context, eventID EventID, includeAll bool) ([]ScheduleEntry, error)
}
