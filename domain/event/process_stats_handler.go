package event

import (
	"fmt"
	"log/slog"
	"sourcesync/errors"
)

type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("[COORDINATOR] PID %d | STATUS %s | CPU %.2f%% | RSS %d MB",
			payload.PID, payload.Status, payload.Cpu, payload.Rss/1024/1024))
	}
}
