package domain

// RoomID identifies a room. Rooms are created implicitly on first join.
type RoomID string

// ConnectionID identifies one network session (one browser tab).
type ConnectionID string

// Participant is a display name bound to exactly one connection.
// Display names are not unique inside a room.
type Participant struct {
	ConnectionID ConnectionID
	DisplayName  string
	Sharing      bool
}

// Roster is the authoritative, ordered-by-join list of a room's participants.
type Roster []Participant

// Contains reports whether the connection is listed in the roster.
func (r Roster) Contains(id ConnectionID) bool {
	for _, p := range r {
		if p.ConnectionID == id {
			return true
		}
	}
	return false
}

// Find returns the roster entry of the connection.
func (r Roster) Find(id ConnectionID) (Participant, bool) {
	for _, p := range r {
		if p.ConnectionID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// RoomSummary is a read-only view of a room used by the ops surfaces.
type RoomSummary struct {
	ID     RoomID
	Roster Roster
}

// Binding is what the registry knows about a live connection.
type Binding struct {
	Room        RoomID
	DisplayName string
}
