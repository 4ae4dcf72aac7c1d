package workers

import (
	"context"
	"log/slog"
	"os"
	"sourcesync/domain/event"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker samples the server's own CPU and memory.
type ProcessStatsWorker struct {
	log            *slog.Logger
	telemetryChan  chan event.Event
	metricInterval time.Duration
	pid            int32
}

func NewProcessStatsWorker(log *slog.Logger, telemetryChan chan event.Event, metricInterval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{
		log:            log,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process sampling")
			return nil
		case <-ticker.C:
			stats, err := Sample(p)
			if err != nil {
				w.log.Error("Error while sampling process", "pid", w.pid, "err", err)
				continue
			}
			select {
			case w.telemetryChan <- event.Event{Type: event.ProcessStatsType, CreatedAt: time.Now().UTC(), Payload: stats}:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}

// Sample reads liveness, CPU and resident memory of a process.
func Sample(p *process.Process) (event.ProcessStats, error) {
	running, err := p.IsRunning()
	if err != nil {
		return event.ProcessStats{}, err
	}
	status := "stopped"
	if running {
		status = "running"
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return event.ProcessStats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return event.ProcessStats{}, err
	}
	return event.ProcessStats{
		PID:    p.Pid,
		Status: status,
		Cpu:    cpu,
		Rss:    mem.RSS,
	}, nil
}
