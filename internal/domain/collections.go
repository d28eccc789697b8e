package domain

import "encoding/json"

// EventIDSet is an insertion-ordered set of event ids with copy-on-write
// semantics: Add and Remove return a new set, leaving the receiver untouched.
// Adding an id that is already present is an idempotent no-op.
type EventIDSet struct {
	ids   []EventID
	index map[string]struct{}
}

// NewEventIDSet builds a set from the given ids, deduplicating while
// preserving first-insertion order.
func NewEventIDSet(ids ...EventID) EventIDSet {
	s := EventIDSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.index[id.String()]; ok {
			continue
		}
		s.index[id.String()] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Add returns a new set containing id.
func (s EventIDSet) Add(id EventID) EventIDSet {
	if s.Contains(id) {
		return s
	}
	return NewEventIDSet(append(s.IDs(), id)...)
}

// Remove returns a new set without id.
func (s EventIDSet) Remove(id EventID) EventIDSet {
	if !s.Contains(id) {
		return s
	}
	kept := make([]EventID, 0, len(s.ids)-1)
	for _, existing := range s.ids {
		if !existing.Equal(id) {
			kept = append(kept, existing)
		}
	}
	return NewEventIDSet(kept...)
}

// Contains reports whether id is in the set.
func (s EventIDSet) Contains(id EventID) bool {
	_, ok := s.index[id.String()]
	return ok
}

// IDs returns the ids in insertion order.
func (s EventIDSet) IDs() []EventID {
	out := make([]EventID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of ids in the set.
func (s EventIDSet) Len() int { return len(s.ids) }

// MarshalJSON encodes the set as an array of id strings in insertion order.
func (s EventIDSet) MarshalJSON() ([]byte, error) {
	out := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, id.String())
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of id strings.
func (s *EventIDSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]EventID, 0, len(raw))
	for _, v := range raw {
		id, err := NewEventID(v)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	*s = NewEventIDSet(ids...)
	return nil
}

// RoomSet is an insertion-ordered collection of rooms keyed by room id, with
// the same copy-on-write semantics as EventIDSet. Adding a room whose id is
// already present replaces the stored room in place.
type RoomSet struct {
	order []RoomID
	byID  map[string]Room
}

// NewRoomSet builds a RoomSet from the given rooms. Later duplicates overwrite
// earlier ones by key without changing insertion order.
func NewRoomSet(rooms ...Room) RoomSet {
	s := RoomSet{byID: make(map[string]Room, len(rooms))}
	for _, room := range rooms {
		if _, ok := s.byID[room.ID.String()]; !ok {
			s.order = append(s.order, room.ID)
		}
		s.byID[room.ID.String()] = room
	}
	return s
}

// Add returns a new set containing room, overwriting any room with the same id.
func (s RoomSet) Add(room Room) RoomSet {
	return NewRoomSet(append(s.Rooms(), room)...)
}

// Remove returns a new set without the room identified by id.
func (s RoomSet) Remove(id RoomID) RoomSet {
	if _, ok := s.byID[id.String()]; !ok {
		return s
	}
	kept := make([]Room, 0, len(s.order)-1)
	for _, room := range s.Rooms() {
		if !room.ID.Equal(id) {
			kept = append(kept, room)
		}
	}
	return NewRoomSet(kept...)
}

// Get returns the room with the given id.
func (s RoomSet) Get(id RoomID) (Room, bool) {
	room, ok := s.byID[id.String()]
	return room, ok
}

// Rooms returns the rooms in insertion order.
func (s RoomSet) Rooms() []Room {
	out := make([]Room, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id.String()])
	}
	return out
}

// Len returns the number of rooms in the set.
func (s RoomSet) Len() int { return len(s.order) }
