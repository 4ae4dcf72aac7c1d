package runtime

import (
	"context"
	"fmt"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sourcesync/errors"
)

// Join binds the connection to the room and broadcasts the new roster to all
// members, the joiner included.
//
// A connection already in another room is rejected with ErrAlreadyRegistered
// and stays where it is. Joining the same room again only re-sends the roster
// to that connection.
func (c *Coordinator) Join(ctx context.Context, id domain.ConnectionID, room domain.RoomID, displayName string, sink contract.EventSink) (domain.Roster, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("join %s: coordinator closed: %w", room, errors.ErrTransport)
	}
	var roster domain.Roster
	err := c.inRoom(room, func(r *roomState) error {
		if err := c.registry.Register(id, room, displayName, sink); err != nil {
			if !errors.Is(err, errors.ErrAlreadyRegistered) {
				return err
			}
			binding, resolveErr := c.registry.Resolve(id)
			if resolveErr != nil || binding.Room != room {
				return err
			}
			roster = r.presence.Annotate(c.registry.Participants(room))
			return c.relay.Deliver(ctx, room, id, event.Joined{
				Room:            room,
				Roster:          roster,
				NewConnectionID: id,
				NewDisplayName:  binding.DisplayName,
			})
		}

		roster = r.presence.Annotate(c.registry.Participants(room))
		c.relay.Broadcast(ctx, room, event.Joined{
			Room:            room,
			Roster:          roster,
			NewConnectionID: id,
			NewDisplayName:  displayName,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("Joined room", "connection_id", id, "room", room, "members", len(roster))
	return roster, nil
}

// Leave is shared by the explicit leave event and transport disconnect.
// A sharing participant first gets a synthetic audio stop, then the remaining
// members are told about the departure. Leaving twice returns ErrUnknownConnection
// and has no other effect.
func (c *Coordinator) Leave(ctx context.Context, id domain.ConnectionID) error {
	binding, err := c.registry.Resolve(id)
	if err != nil {
		return err
	}
	err = c.inRoom(binding.Room, func(r *roomState) error {
		binding, err := c.registry.Unregister(id)
		if err != nil {
			return err
		}
		if r.presence.Forget(id) == Stopped {
			c.relay.Broadcast(ctx, binding.Room, event.AudioStopped{
				Room:         binding.Room,
				ConnectionID: id,
				DisplayName:  binding.DisplayName,
				Synthetic:    true,
			})
		}
		c.relay.Broadcast(ctx, binding.Room, event.Disconnected{
			Room:         binding.Room,
			ConnectionID: id,
			DisplayName:  binding.DisplayName,
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.log.Debug("Left room", "connection_id", id, "room", binding.Room)
	return nil
}

// Roster snapshots a room. False when the room doesn't exist or is empty.
func (c *Coordinator) Roster(room domain.RoomID) (domain.Roster, bool) {
	r, ok := c.table.lookup(room)
	if !ok {
		return nil, false
	}
	defer c.table.release(r, c.registry.Count)

	r.mu.Lock()
	defer r.mu.Unlock()
	roster := r.presence.Annotate(c.registry.Participants(room))
	return roster, len(roster) > 0
}
