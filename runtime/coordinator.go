package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sourcesync/errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Coordinator serializes every handler of a room in that room's critical
// section and drives the registry, presence and relay from there.
// Handlers of different rooms only meet on the table and registry map locks.
type Coordinator struct {
	log      *slog.Logger
	registry contract.IRegistry
	relay    contract.IRelay
	table    *RoomTable
	filter   contract.MessageFilter
	closed   atomic.Bool
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry, relay contract.IRelay, table *RoomTable, filter contract.MessageFilter) *Coordinator {
	return &Coordinator{
		log:      log,
		registry: registry,
		relay:    relay,
		table:    table,
		filter:   filter,
	}
}

// inRoom runs fn with the room locked. The room is created if needed and
// deleted on the way out when fn left it without members.
func (c *Coordinator) inRoom(id domain.RoomID, fn func(r *roomState) error) error {
	room := c.table.acquire(id)
	defer c.table.release(room, c.registry.Count)

	room.mu.Lock()
	defer room.mu.Unlock()
	return fn(room)
}

// asMember runs fn in the critical section of the room the connection is bound to.
// The binding is checked again under the lock since a leave may have won the race.
func (c *Coordinator) asMember(id domain.ConnectionID, fn func(r *roomState, binding domain.Binding) error) error {
	binding, err := c.registry.Resolve(id)
	if err != nil {
		return err
	}
	return c.inRoom(binding.Room, func(r *roomState) error {
		current, err := c.registry.Resolve(id)
		if err != nil {
			return err
		}
		if current.Room != binding.Room {
			return fmt.Errorf("%s moved out of room %s: %w", id, binding.Room, errors.ErrNotInRoom)
		}
		return fn(r, current)
	})
}

// ChangeCode relays the whole editor buffer to everyone else in the room.
func (c *Coordinator) ChangeCode(ctx context.Context, id domain.ConnectionID, code string) error {
	return c.asMember(id, func(_ *roomState, binding domain.Binding) error {
		c.relay.Broadcast(ctx, binding.Room, event.CodeChanged{Room: binding.Room, From: id, Code: code}, id)
		return nil
	})
}

// SyncCode hands the sender's buffer to one newcomer of the same room.
func (c *Coordinator) SyncCode(ctx context.Context, id, target domain.ConnectionID, code string) error {
	return c.asMember(id, func(_ *roomState, binding domain.Binding) error {
		return c.relay.Deliver(ctx, binding.Room, target, event.CodeSynced{
			Room:   binding.Room,
			From:   id,
			Target: target,
			Code:   code,
		})
	})
}

// SendMessage censors the content and posts it to every member, sender included.
func (c *Coordinator) SendMessage(ctx context.Context, id domain.ConnectionID, content string) (domain.Message, error) {
	var msg domain.Message
	err := c.asMember(id, func(_ *roomState, binding domain.Binding) error {
		lang := ""
		if c.filter != nil {
			content, lang = c.filter.Sanitize(content)
		}
		msg = domain.Message{
			ID:           uuid.New(),
			Room:         binding.Room,
			ConnectionID: id,
			Author:       binding.DisplayName,
			Content:      content,
			Lang:         lang,
			CreatedAt:    time.Now().UTC(),
		}
		c.relay.Broadcast(ctx, binding.Room, event.MessagePosted{Message: msg})
		return nil
	})
	return msg, err
}

// Rooms lists the live rooms with their rosters, sorted by id.
func (c *Coordinator) Rooms() []domain.RoomSummary {
	summaries := make([]domain.RoomSummary, 0)
	for _, id := range c.table.IDs() {
		if roster, ok := c.Roster(id); ok {
			summaries = append(summaries, domain.RoomSummary{ID: id, Roster: roster})
		}
	}
	return summaries
}

// Connections returns the number of bound connections.
func (c *Coordinator) Connections() int {
	return c.registry.Len()
}

func (c *Coordinator) Closed() bool {
	return c.closed.Load()
}

// Close closes every sink and forgets all rooms. Write pumps notice the
// closed sinks and hang up. Safe to call more than once.
func (c *Coordinator) Close() {
	if c.closed.Swap(true) {
		return
	}
	sessions := c.registry.Clear()
	for _, s := range sessions {
		s.Sink.Close()
	}
	c.table.clear()
	c.log.Info("Coordinator closed", "connections", len(sessions))
}
