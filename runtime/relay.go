package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sourcesync/errors"
	"time"

	"github.com/samber/lo"
)

// Relay pushes room events into the sinks of a room's members.
//
// Sinks only enqueue, so a Broadcast issued while a room lock is held
// preserves per-room ordering without waiting on any socket.
// A sink that fails is reported and skipped, the others still receive the event.
type Relay struct {
	log         *slog.Logger
	registry    contract.IRegistry
	telemetry   chan event.Event
	sinkTimeout time.Duration
}

var _ contract.IRelay = (*Relay)(nil)

func NewRelay(log *slog.Logger, registry contract.IRegistry, telemetry chan event.Event, sinkTimeout time.Duration) *Relay {
	return &Relay{log: log, registry: registry, telemetry: telemetry, sinkTimeout: sinkTimeout}
}

// Broadcast sends the event to every member of the room except the excluded
// connections and returns how many sinks accepted it.
func (r *Relay) Broadcast(ctx context.Context, room domain.RoomID, e event.DomainEvent, exclude ...domain.ConnectionID) int {
	delivered := 0
	for _, s := range r.registry.GetSinksForRoom(room) {
		if lo.Contains(exclude, s.ConnectionID) {
			continue
		}
		if err := r.consume(ctx, s, e); err != nil {
			continue
		}
		delivered++
	}
	return delivered
}

// Deliver sends the event to a single member of the room.
func (r *Relay) Deliver(ctx context.Context, room domain.RoomID, target domain.ConnectionID, e event.DomainEvent) error {
	for _, s := range r.registry.GetSinksForRoom(room) {
		if s.ConnectionID == target {
			return r.consume(ctx, s, e)
		}
	}
	return fmt.Errorf("deliver %s to %s in room %s: %w", e.Kind(), target, room, errors.ErrNotInRoom)
}

func (r *Relay) consume(ctx context.Context, s contract.Session, e event.DomainEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, r.sinkTimeout)
	defer cancel()

	err := s.Sink.Consume(sinkCtx, e)
	if err == nil {
		return nil
	}
	r.log.Debug("Delivery failed",
		"connection_id", s.ConnectionID,
		"room", s.Room,
		"kind", e.Kind(),
		"error", err)
	r.emit(event.Event{
		Type:      event.DeliveryFailedType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.DeliveryFailed{ConnectionID: s.ConnectionID, Room: s.Room, Kind: e.Kind()},
	})
	return err
}

// emit never blocks, telemetry is best effort
func (r *Relay) emit(evt event.Event) {
	if r.telemetry == nil {
		return
	}
	select {
	case r.telemetry <- evt:
	default:
		r.log.Debug("Telemetry event lost", "type", evt.Type)
	}
}

