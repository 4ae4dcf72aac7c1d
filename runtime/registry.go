package runtime

import (
	"fmt"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/errors"
	"sync"
)

type session struct {
	binding domain.Binding
	sink    contract.EventSink
}

// Registry is the connection directory: connection -> (room, display name, sink)
// plus the reverse room -> members index, ordered by join.
// Its lock only covers map updates, room handlers are serialized elsewhere.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]session
	roomMembers map[domain.RoomID][]domain.ConnectionID
}

var _ contract.IRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]session),
		roomMembers: make(map[domain.RoomID][]domain.ConnectionID),
	}
}

// Register binds a new connection to a room/name pair.
// A connection already bound fails with ErrAlreadyRegistered, whatever room it asks for.
func (r *Registry) Register(id domain.ConnectionID, room domain.RoomID, displayName string, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.connections[id]; ok {
		return fmt.Errorf("%s already in room %s: %w", id, existing.binding.Room, errors.ErrAlreadyRegistered)
	}
	r.connections[id] = session{
		binding: domain.Binding{Room: room, DisplayName: displayName},
		sink:    sink,
	}
	r.roomMembers[room] = append(r.roomMembers[room], id)
	return nil
}

func (r *Registry) Resolve(id domain.ConnectionID) (domain.Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.connections[id]
	if !ok {
		return domain.Binding{}, fmt.Errorf("resolve %s: %w", id, errors.ErrUnknownConnection)
	}
	return s.binding, nil
}

// Unregister removes the binding. Explicit leave and disconnect both end up here,
// the second caller gets ErrUnknownConnection.
func (r *Registry) Unregister(id domain.ConnectionID) (domain.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.connections[id]
	if !ok {
		return domain.Binding{}, fmt.Errorf("unregister %s: %w", id, errors.ErrUnknownConnection)
	}
	delete(r.connections, id)

	members := r.roomMembers[s.binding.Room]
	for i, member := range members {
		if member == id {
			members = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	// No empty member list is kept around
	if len(members) == 0 {
		delete(r.roomMembers, s.binding.Room)
	} else {
		r.roomMembers[s.binding.Room] = members
	}
	return s.binding, nil
}

// Participants lists the room members in join order, without presence flags.
func (r *Registry) Participants(room domain.RoomID) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.roomMembers[room]
	participants := make([]domain.Participant, 0, len(members))
	for _, id := range members {
		participants = append(participants, domain.Participant{
			ConnectionID: id,
			DisplayName:  r.connections[id].binding.DisplayName,
		})
	}
	return participants
}

// GetSinksForRoom retrieves the active sinks of a room in join order.
// Returns nil if the room has no members.
func (r *Registry) GetSinksForRoom(room domain.RoomID) []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	sessions := make([]contract.Session, 0, len(members))
	for _, id := range members {
		sessions = append(sessions, r.toSession(id))
	}
	return sessions
}

func (r *Registry) Sessions() []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]contract.Session, 0, len(r.connections))
	for id := range r.connections {
		sessions = append(sessions, r.toSession(id))
	}
	return sessions
}

// Sink returns the outbound sink of a live connection.
func (r *Registry) Sink(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.connections[id]
	return s.sink, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

func (r *Registry) Count(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers[room])
}

// Clear drops every binding and hands back what was registered, for shutdown.
func (r *Registry) Clear() []contract.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]contract.Session, 0, len(r.connections))
	for id := range r.connections {
		sessions = append(sessions, r.toSession(id))
	}
	r.connections = make(map[domain.ConnectionID]session)
	r.roomMembers = make(map[domain.RoomID][]domain.ConnectionID)
	return sessions
}

func (r *Registry) toSession(id domain.ConnectionID) contract.Session {
	s := r.connections[id]
	return contract.Session{
		ConnectionID: id,
		Room:         s.binding.Room,
		DisplayName:  s.binding.DisplayName,
		Sink:         s.sink,
	}
}
