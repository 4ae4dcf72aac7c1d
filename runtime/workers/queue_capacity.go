package workers

import (
	"context"
	"log/slog"
	"sourcesync/contract"
	"sourcesync/domain/event"
	"time"
)

// sampled is implemented by sinks able to report their lane usage.
type sampled interface {
	Stats() event.QueueCapacity
}

// QueueCapacityWorker periodically samples the outbound lanes of every live
// connection. Sampling never blocks the sinks, and a lost sample is fine.
type QueueCapacityWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewQueueCapacityWorker(log *slog.Logger, registry contract.IRegistry,
	telemetryChan chan event.Event, metricInterval time.Duration) *QueueCapacityWorker {
	return &QueueCapacityWorker{
		log:            log,
		registry:       registry,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w QueueCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping queue sampling")
			return nil
		case <-ticker.C:
			w.sample(ctx)
		}
	}
}

func (w QueueCapacityWorker) sample(ctx context.Context) {
	for _, s := range w.registry.Sessions() {
		sink, ok := s.Sink.(sampled)
		if !ok {
			continue
		}
		stats := sink.Stats()
		stats.ConnectionID = s.ConnectionID
		stats.Room = s.Room

		select {
		case <-ctx.Done():
			return
		case w.telemetryChan <- event.Event{Type: event.QueueCapacityType, CreatedAt: time.Now().UTC(), Payload: stats}:
		default:
			w.log.Debug("Observability telemetry event lost")
		}
	}
}
