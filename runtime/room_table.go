package runtime

import (
	"sort"
	"sourcesync/domain"
	"sync"
)

// roomState is the per-room critical section. Everything that reads or
// mutates a room's membership or presence runs with mu held.
type roomState struct {
	mu       sync.Mutex
	id       domain.RoomID
	presence *Presence

	// refs counts handlers holding the room; guarded by the table lock.
	refs int
}

// RoomTable owns the live rooms. Rooms are created on first acquire and
// deleted on the release that leaves them without members and without holders.
// The table lock only covers the map, never a room handler.
type RoomTable struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*roomState
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomID]*roomState)}
}

func (t *RoomTable) acquire(id domain.RoomID) *roomState {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[id]
	if !ok {
		room = &roomState{id: id, presence: NewPresence()}
		t.rooms[id] = room
	}
	room.refs++
	return room
}

// lookup acquires a room only if it already exists.
func (t *RoomTable) lookup(id domain.RoomID) (*roomState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[id]
	if !ok {
		return nil, false
	}
	room.refs++
	return room, true
}

// release drops a hold. With no holder left, nobody can be inside the room,
// so members can be counted without taking the room lock.
func (t *RoomTable) release(room *roomState, members func(domain.RoomID) int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	room.refs--
	if room.refs == 0 && members(room.id) == 0 {
		delete(t.rooms, room.id)
	}
}

func (t *RoomTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms)
}

// IDs returns the live room keys, sorted.
func (t *RoomTable) IDs() []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]domain.RoomID, 0, len(t.rooms))
	for id := range t.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *RoomTable) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rooms = make(map[domain.RoomID]*roomState)
}
