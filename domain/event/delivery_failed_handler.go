package event

import (
	"log/slog"
	"sourcesync/errors"
)

// DeliveryFailedHandler counts deliveries skipped because the recipient
// transport was already closed.
type DeliveryFailedHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewDeliveryFailedHandler(log *slog.Logger, counter *Counter) *DeliveryFailedHandler {
	return &DeliveryFailedHandler{log: log, counter: counter}
}

func (h *DeliveryFailedHandler) Handle(event Event) {
	if event.Type != DeliveryFailedType {
		return
	}
	payload, ok := event.Payload.(DeliveryFailed)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error())
		return
	}
	h.counter.Increment(DeliveryFailedType)
	h.log.Debug("delivery skipped",
		"connection_id", payload.ConnectionID,
		"room_id", payload.Room,
		"kind", payload.Kind)
}
