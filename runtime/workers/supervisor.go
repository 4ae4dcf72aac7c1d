package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sourcesync/contract"
	"sourcesync/domain/event"
	"sourcesync/errors"
	"sync"
	"time"
)

// Supervisor runs each worker in its own goroutine and restarts it after a
// panic or an error. A worker returning nil is done for good.
// Cancelling the parent context, or calling Stop, ends every worker and Run
// returns once they all have.
type Supervisor struct {
	Cancel          context.CancelFunc
	wg              *sync.WaitGroup
	log             *slog.Logger
	telemetryChan   chan event.Event
	restartInterval time.Duration
	workers         []contract.Worker
}

var _ contract.ISupervisor = (*Supervisor)(nil)

func NewSupervisor(log *slog.Logger, telemetryChan chan event.Event, restartInterval time.Duration) *Supervisor {
	return &Supervisor{
		wg:              &sync.WaitGroup{},
		log:             log,
		telemetryChan:   telemetryChan,
		restartInterval: restartInterval,
	}
}

// Run blocks until every worker has stopped.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker under supervision. A crash only restarts that worker.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			panicked := false
			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						panicked = true
						err = fmt.Errorf("%v: %w", r, errors.ErrWorkerPanic)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			if panicked {
				s.emit(event.Event{
					Type:      event.RestartedAfterPanicType,
					CreatedAt: time.Now().UTC(),
					Payload:   event.WorkerRestartedAfterPanic{WorkerName: workerName},
				})
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

func (s *Supervisor) emit(evt event.Event) {
	if s.telemetryChan == nil {
		return
	}
	select {
	case s.telemetryChan <- evt:
	default:
		s.log.Debug("Observability telemetry event lost")
	}
}

// Stop cancels every supervised worker. Run returns once they're all gone.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
