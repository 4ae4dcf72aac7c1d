package observability

import (
	"runtime"
	"sort"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sync"
	"time"
)

// ConnectionQueue is the last sample of one connection's outbound lanes.
type ConnectionQueue struct {
	ConnectionID   domain.ConnectionID `json:"connection_id"`
	Room           domain.RoomID       `json:"room"`
	ReliableLength int                 `json:"reliable_length"`
	ReliableCap    int                 `json:"reliable_cap"`
	AudioLength    int                 `json:"audio_length"`
	AudioCap       int                 `json:"audio_cap"`
	AudioDropped   uint64              `json:"audio_dropped"`
	SampledAt      time.Time           `json:"sampled_at"`
}

// MonitoringStats is what /debug/stats and roomctl show.
type MonitoringStats struct {
	Rooms            int               `json:"rooms"`
	Connections      int               `json:"connections"`
	PID              int32             `json:"pid"`
	Status           string            `json:"status"`
	Cpu              float64           `json:"cpu"`
	RssMb            uint64            `json:"rss_mb"`
	AllocMemMb       uint64            `json:"alloc_mem_mb"`
	NumGC            uint32            `json:"num_gc"`
	NumGoroutine     int               `json:"num_goroutine"`
	DeliveryFailures uint64            `json:"delivery_failures"`
	WorkerRestarts   uint64            `json:"worker_restarts"`
	Queues           []ConnectionQueue `json:"queues"`
}

// MonitoringManager keeps the latest technical events. It is one more
// handler of the telemetry chain.
type MonitoringManager struct {
	mu         sync.Mutex
	counter    *event.Counter
	process    event.ProcessStats
	queues     map[domain.ConnectionID]ConnectionQueue
	staleAfter time.Duration
}

var _ event.Handler = (*MonitoringManager)(nil)

// NewMonitoringManager forgets queue samples older than staleAfter,
// they belong to connections that are gone.
func NewMonitoringManager(counter *event.Counter, staleAfter time.Duration) *MonitoringManager {
	return &MonitoringManager{
		counter:    counter,
		queues:     make(map[domain.ConnectionID]ConnectionQueue),
		staleAfter: staleAfter,
	}
}

func (mm *MonitoringManager) Handle(evt event.Event) {
	switch payload := evt.Payload.(type) {
	case event.ProcessStats:
		mm.mu.Lock()
		mm.process = payload
		mm.mu.Unlock()
	case event.QueueCapacity:
		mm.mu.Lock()
		mm.queues[payload.ConnectionID] = ConnectionQueue{
			ConnectionID:   payload.ConnectionID,
			Room:           payload.Room,
			ReliableLength: payload.ReliableLength,
			ReliableCap:    payload.ReliableCap,
			AudioLength:    payload.AudioLength,
			AudioCap:       payload.AudioCap,
			AudioDropped:   payload.AudioDropped,
			SampledAt:      evt.CreatedAt,
		}
		mm.mu.Unlock()
	}
}

// GetLatest builds a snapshot. Rooms and connections come from the caller
// since they live in the coordinator.
func (mm *MonitoringManager) GetLatest(rooms, connections int) MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now().UTC()
	queues := make([]ConnectionQueue, 0, len(mm.queues))
	for id, q := range mm.queues {
		if mm.staleAfter > 0 && now.Sub(q.SampledAt) > mm.staleAfter {
			delete(mm.queues, id)
			continue
		}
		queues = append(queues, q)
	}
	sort.Slice(queues, func(i, j int) bool { return queues[i].ConnectionID < queues[j].ConnectionID })

	return MonitoringStats{
		Rooms:            rooms,
		Connections:      connections,
		PID:              mm.process.PID,
		Status:           mm.process.Status,
		Cpu:              mm.process.Cpu,
		RssMb:            mm.process.Rss / 1024 / 1024,
		AllocMemMb:       m.Alloc / 1024 / 1024,
		NumGC:            m.NumGC,
		NumGoroutine:     runtime.NumGoroutine(),
		DeliveryFailures: mm.counter.Get(event.DeliveryFailedType),
		WorkerRestarts:   mm.counter.Get(event.RestartedAfterPanicType),
		Queues:           queues,
	}
}
