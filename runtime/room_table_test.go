package runtime

import (
	"sourcesync/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomTable_Room_Deleted_When_Empty_And_Released(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	members := 0
	count := func(domain.RoomID) int { return members }

	// Given a room is acquired by a joiner
	room := table.acquire("abc123")
	members = 1
	table.release(room, count)

	// Then it survives while it has members
	req.Equal(1, table.Len())

	// When the last member leaves
	room = table.acquire("abc123")
	members = 0
	table.release(room, count)

	// Then the room is gone
	req.Zero(table.Len())
	_, ok := table.lookup("abc123")
	req.False(ok)
}

func TestRoomTable_Room_Kept_While_Held(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	empty := func(domain.RoomID) int { return 0 }

	// Given two handlers hold the same room
	first := table.acquire("abc123")
	second := table.acquire("abc123")
	req.Same(first, second)

	// When the first one releases an empty room
	table.release(first, empty)

	// Then the room is not deleted under the second holder
	req.Equal(1, table.Len())
	table.release(second, empty)
	req.Zero(table.Len())
}

func TestRoomTable_IDs_Sorted(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()

	table.acquire("zeta")
	table.acquire("alpha")

	req.Equal([]domain.RoomID{"alpha", "zeta"}, table.IDs())
}
