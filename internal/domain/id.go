package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Typed identifiers. Each entity kind gets its own struct-wrapped string so an
// EventID can never be compared to or passed as a UserID; mixing kinds is a
// compile error. The zero value is invalid; construct with New*ID or Generate*ID.

// EventID identifies an Event.
type EventID struct {
	value string
}

// NewEventID wraps an existing identifier, rejecting empty or blank values.
func NewEventID(raw string) (EventID, error) {
	if strings.TrimSpace(raw) == "" {
		return EventID{}, fmt.Errorf("event id must not be empty: %w", ErrInvalidInput)
	}
	return EventID{value: raw}, nil
}

// GenerateEventID returns a fresh random EventID.
func GenerateEventID() EventID {
	return EventID{value: uuid.NewString()}
}

func (id EventID) String() string       { return id.value }
func (id EventID) IsZero() bool         { return id.value == "" }
func (id EventID) Equal(o EventID) bool { return id.value == o.value }

// UserID identifies a User.
type UserID struct {
	value string
}

// NewUserID wraps an existing identifier, rejecting empty or blank values.
func NewUserID(raw string) (UserID, error) {
	if strings.TrimSpace(raw) == "" {
		return UserID{}, fmt.Errorf("user id must not be empty: %w", ErrInvalidInput)
	}
	return UserID{value: raw}, nil
}

// GenerateUserID returns a fresh random UserID.
func GenerateUserID() UserID {
	return UserID{value: uuid.NewString()}
}

func (id UserID) String() string      { return id.value }
func (id UserID) IsZero() bool        { return id.value == "" }
func (id UserID) Equal(o UserID) bool { return id.value == o.value }

// RoomID identifies a Room.
type RoomID struct {
	value string
}

// NewRoomID wraps an existing identifier, rejecting empty or blank values.
func NewRoomID(raw string) (RoomID, error) {
	if strings.TrimSpace(raw) == "" {
		return RoomID{}, fmt.Errorf("room id must not be empty: %w", ErrInvalidInput)
	}
	return RoomID{value: raw}, nil
}

// GenerateRoomID returns a fresh random RoomID.
func GenerateRoomID() RoomID {
	return RoomID{value: uuid.NewString()}
}

func (id RoomID) String() string      { return id.value }
func (id RoomID) IsZero() bool        { return id.value == "" }
func (id RoomID) Equal(o RoomID) bool { return id.value == o.value }

// TalkID identifies a Talk.
type TalkID struct {
	value string
}

// NewTalkID wraps an existing identifier, rejecting empty or blank values.
func NewTalkID(raw string) (TalkID, error) {
	if strings.TrimSpace(raw) == "" {
		return TalkID{}, fmt.Errorf("talk id must not be empty: %w", ErrInvalidInput)
	}
	return TalkID{value: raw}, nil
}

// GenerateTalkID returns a fresh random TalkID.
func GenerateTalkID() TalkID {
	return TalkID{value: uuid.NewString()}
}

func (id TalkID) String() string      { return id.value }
func (id TalkID) IsZero() bool        { return id.value == "" }
func (id TalkID) Equal(o TalkID) bool { return id.value == o.value }

// LocationID identifies a Location.
type LocationID struct {
	value string
}

// NewLocationID wraps an existing identifier, rejecting empty or blank values.
func NewLocationID(raw string) (LocationID, error) {
	if strings.TrimSpace(raw) == "" {
		return LocationID{}, fmt.Errorf("location id must not be empty: %w", ErrInvalidInput)
	}
	return LocationID{value: raw}, nil
}

// GenerateLocationID returns a fresh random LocationID.
func GenerateLocationID() LocationID {
	return LocationID{value: uuid.NewString()}
}

func (id LocationID) String() string          { return id.value }
func (id LocationID) IsZero() bool            { return id.value == "" }
func (id LocationID) Equal(o LocationID) bool { return id.value == o.value }

// Database round-tripping. IDs travel as plain text columns.

func scanID(dst *string, src any) error {
	switch v := src.(type) {
	case string:
		*dst = v
	case []byte:
		*dst = string(v)
	default:
		return fmt.Errorf("cannot scan %T into id", src)
	}
	return nil
}

func (id EventID) Value() (driver.Value, error)    { return id.value, nil }
func (id *EventID) Scan(src any) error             { return scanID(&id.value, src) }
func (id UserID) Value() (driver.Value, error)     { return id.value, nil }
func (id *UserID) Scan(src any) error              { return scanID(&id.value, src) }
func (id RoomID) Value() (driver.Value, error)     { return id.value, nil }
func (id *RoomID) Scan(src any) error              { return scanID(&id.value, src) }
func (id TalkID) Value() (driver.Value, error)     { return id.value, nil }
func (id *TalkID) Scan(src any) error              { return scanID(&id.value, src) }
func (id LocationID) Value() (driver.Value, error) { return id.value, nil }
func (id *LocationID) Scan(src any) error          { return scanID(&id.value, src) }

// JSON round-tripping: IDs serialize as plain strings via encoding.TextMarshaler.

func (id EventID) MarshalText() ([]byte, error)     { return []byte(id.value), nil }
func (id *EventID) UnmarshalText(b []byte) error    { id.value = string(b); return nil }
func (id UserID) MarshalText() ([]byte, error)      { return []byte(id.value), nil }
func (id *UserID) UnmarshalText(b []byte) error     { id.value = string(b); return nil }
func (id RoomID) MarshalText() ([]byte, error)      { return []byte(id.value), nil }
func (id *RoomID) UnmarshalText(b []byte) error     { id.value = string(b); return nil }
func (id TalkID) MarshalText() ([]byte, error)      { return []byte(id.value), nil }
func (id *TalkID) UnmarshalText(b []byte) error     { id.value = string(b); return nil }
func (id LocationID) MarshalText() ([]byte, error)  { return []byte(id.value), nil }
func (id *LocationID) UnmarshalText(b []byte) error { id.value = string(b); return nil }
