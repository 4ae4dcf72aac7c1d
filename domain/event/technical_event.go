package event

import (
	"sourcesync/domain"
	"time"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	QueueCapacityType       Type = "QUEUE_CAPACITY"
	DeliveryFailedType      Type = "DELIVERY_FAILED"
	ProcessStatsType        Type = "PROCESS_STATS"
)

// Event is a technical event flowing through the telemetry channel.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

// QueueCapacity samples one connection's outbound lanes.
type QueueCapacity struct {
	ConnectionID   domain.ConnectionID
	Room           domain.RoomID
	ReliableLength int
	ReliableCap    int
	AudioLength    int
	AudioCap       int
	AudioDropped   uint64
}

type DeliveryFailed struct {
	ConnectionID domain.ConnectionID
	Room         domain.RoomID
	Kind         Kind
}

type ProcessStats struct {
	PID    int32
	Status string
	Cpu    float64
	Rss    uint64
}
