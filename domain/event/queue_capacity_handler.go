package event

import (
	"fmt"
	"log/slog"
	"sourcesync/errors"
)

// QueueCapacityHandler watches the outbound lanes of every connection.
// A reliable lane close to full means the peer is about to be disconnected,
// a growing audio drop count means the peer cannot keep up with the voice stream.
type QueueCapacityHandler struct {
	log                  *slog.Logger
	lowCapacityThreshold int
}

func NewQueueCapacityHandler(log *slog.Logger, lowCapacityThreshold int) *QueueCapacityHandler {
	return &QueueCapacityHandler{log: log, lowCapacityThreshold: lowCapacityThreshold}
}

func (h QueueCapacityHandler) Handle(event Event) {
	switch event.Type {
	case QueueCapacityType:
		payload, ok := event.Payload.(QueueCapacity)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("Connection %s reliable %d / %d, audio %d / %d",
			payload.ConnectionID, payload.ReliableLength, payload.ReliableCap,
			payload.AudioLength, payload.AudioCap))
		if payload.ReliableCap <= 0 {
			return
		}
		capacityLeft := payload.ReliableCap - payload.ReliableLength
		if capacityLeft <= h.lowCapacityThreshold {
			h.log.Warn("reliable lane almost full",
				"connection_id", payload.ConnectionID,
				"room_id", payload.Room,
				"capacity_left", capacityLeft)
		}
		if payload.AudioDropped > 0 {
			h.log.Debug("audio chunks dropped",
				"connection_id", payload.ConnectionID,
				"dropped", payload.AudioDropped)
		}
	}
}
