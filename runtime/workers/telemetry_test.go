package workers

import (
	"context"
	"log/slog"
	"sourcesync/domain/event"
	"sourcesync/runtime"
	"sourcesync/sink"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events chan event.Event
}

func (h recordingHandler) Handle(evt event.Event) { h.events <- evt }

func TestTelemetryWorker_Dispatches_And_Stops(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetry := make(chan event.Event, 1)
	handler := recordingHandler{events: make(chan event.Event, 1)}
	worker := NewTelemetryWorker(log, telemetry, []event.Handler{handler})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// When a technical event is published
	telemetry <- event.Event{Type: event.DeliveryFailedType}

	// Then the handlers see it
	select {
	case evt := <-handler.events:
		req.Equal(event.DeliveryFailedType, evt.Type)
	case <-time.After(time.Second):
		req.Fail("handler not called")
	}

	// And the worker returns on cancellation
	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker did not stop")
	}
}

func TestQueueCapacityWorker_Samples_Live_Connections(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	connection := sink.NewConnectionSink("alice", 8, 4)
	req.NoError(registry.Register("alice", "abc123", "Alice", connection))
	req.NoError(connection.Consume(context.Background(), event.CodeChanged{Room: "abc123"}))

	telemetry := make(chan event.Event, 4)
	worker := NewQueueCapacityWorker(log, registry, telemetry, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case evt := <-telemetry:
		req.Equal(event.QueueCapacityType, evt.Type)
		req.Equal(event.QueueCapacity{
			ConnectionID:   "alice",
			Room:           "abc123",
			ReliableLength: 1,
			ReliableCap:    8,
			AudioCap:       4,
		}, evt.Payload)
	case <-time.After(time.Second):
		req.Fail("no sample")
	}
}

func TestProcessStatsWorker_Samples_Itself(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetry := make(chan event.Event, 1)
	worker := NewProcessStatsWorker(log, telemetry, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case evt := <-telemetry:
		stats, ok := evt.Payload.(event.ProcessStats)
		req.True(ok)
		req.Equal(worker.pid, stats.PID)
		req.Equal("running", stats.Status)
		req.NotZero(stats.Rss)
	case <-time.After(2 * time.Second):
		req.Fail("no sample")
	}
}
