package runtime

import (
	"context"
	"sourcesync/domain"
	"sourcesync/domain/event"
)

// Transition is the outcome of a presence update.
type Transition int

const (
	NoChange Transition = iota
	Started
	Stopped
)

// Presence holds the {Idle, Sharing} state of every connection of one room.
// It is not safe for concurrent use; the owning room's lock protects it.
type Presence struct {
	sharing map[domain.ConnectionID]bool
}

func NewPresence() *Presence {
	return &Presence{sharing: make(map[domain.ConnectionID]bool)}
}

// SetSharing applies StartAudio (true) or StopAudio (false).
// Start while Sharing and Stop while Idle are no-ops.
func (p *Presence) SetSharing(id domain.ConnectionID, sharing bool) Transition {
	if p.sharing[id] == sharing {
		return NoChange
	}
	if sharing {
		p.sharing[id] = true
		return Started
	}
	delete(p.sharing, id)
	return Stopped
}

func (p *Presence) IsSharing(id domain.ConnectionID) bool {
	return p.sharing[id]
}

// Forget is the Disconnect transition. It reports Stopped when the
// connection was sharing so the caller can emit the synthetic stop.
func (p *Presence) Forget(id domain.ConnectionID) Transition {
	return p.SetSharing(id, false)
}

// Annotate copies the sharing flags onto a participant list.
func (p *Presence) Annotate(participants []domain.Participant) domain.Roster {
	roster := make(domain.Roster, len(participants))
	for i, participant := range participants {
		participant.Sharing = p.sharing[participant.ConnectionID]
		roster[i] = participant
	}
	return roster
}

// StartAudio marks the connection as sharing and tells the rest of the room.
func (c *Coordinator) StartAudio(ctx context.Context, id domain.ConnectionID) error {
	return c.setSharing(ctx, id, true)
}

// StopAudio marks the connection as idle and tells the rest of the room.
func (c *Coordinator) StopAudio(ctx context.Context, id domain.ConnectionID) error {
	return c.setSharing(ctx, id, false)
}

func (c *Coordinator) setSharing(ctx context.Context, id domain.ConnectionID, sharing bool) error {
	return c.asMember(id, func(r *roomState, binding domain.Binding) error {
		switch r.presence.SetSharing(id, sharing) {
		case Started:
			c.relay.Broadcast(ctx, binding.Room, event.AudioStarted{
				Room:         binding.Room,
				ConnectionID: id,
				DisplayName:  binding.DisplayName,
			}, id)
		case Stopped:
			c.relay.Broadcast(ctx, binding.Room, event.AudioStopped{
				Room:         binding.Room,
				ConnectionID: id,
				DisplayName:  binding.DisplayName,
			}, id)
		}
		return nil
	})
}

// RelayAudioChunk passes one chunk to the other members through their lossy lane.
// Nothing is buffered here.
func (c *Coordinator) RelayAudioChunk(ctx context.Context, id domain.ConnectionID, chunk, mime string) error {
	return c.asMember(id, func(_ *roomState, binding domain.Binding) error {
		c.relay.Broadcast(ctx, binding.Room, event.AudioChunk{
			Room:         binding.Room,
			ConnectionID: id,
			DisplayName:  binding.DisplayName,
			Chunk:        chunk,
			Mime:         mime,
		}, id)
		return nil
	})
}
