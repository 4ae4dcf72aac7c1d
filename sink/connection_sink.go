package sink

import (
	"context"
	"fmt"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sourcesync/errors"
	"sync"
	"sync/atomic"
)

// ConnectionSink is the outbound queue of one connection, drained by its write pump.
//
// Reliable events (membership, code, presence, chat) go through a bounded FIFO.
// When that FIFO is full the connection is too slow to keep its roster right,
// so the sink closes itself and the transport hangs up.
// Audio chunks go through a separate small ring that drops the oldest chunk.
type ConnectionSink struct {
	id       domain.ConnectionID
	reliable chan event.DomainEvent

	mu         sync.Mutex
	audio      []event.DomainEvent
	audioCap   int
	audioReady chan struct{}
	dropped    atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

var _ contract.EventSink = (*ConnectionSink)(nil)

func NewConnectionSink(id domain.ConnectionID, reliableSize, audioSize int) *ConnectionSink {
	if audioSize < 1 {
		audioSize = 1
	}
	return &ConnectionSink{
		id:         id,
		reliable:   make(chan event.DomainEvent, reliableSize),
		audio:      make([]event.DomainEvent, 0, audioSize),
		audioCap:   audioSize,
		audioReady: make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Consume enqueues without ever waiting on the network.
func (s *ConnectionSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return fmt.Errorf("sink %s closed: %w", s.id, errors.ErrDeliveryFailure)
	default:
	}

	if event.Lossy(e) {
		s.pushAudio(e)
		return nil
	}

	select {
	case s.reliable <- e:
		return nil
	default:
		s.Close()
		return fmt.Errorf("sink %s overflowed (%d events): %w", s.id, cap(s.reliable), errors.ErrDeliveryFailure)
	}
}

func (s *ConnectionSink) pushAudio(e event.DomainEvent) {
	s.mu.Lock()
	if len(s.audio) == s.audioCap {
		s.audio = append(s.audio[:0], s.audio[1:]...)
		s.dropped.Add(1)
	}
	s.audio = append(s.audio, e)
	s.mu.Unlock()

	select {
	case s.audioReady <- struct{}{}:
	default:
	}
}

func (s *ConnectionSink) popAudio() (event.DomainEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.audio) == 0 {
		return nil, false
	}
	e := s.audio[0]
	s.audio = append(s.audio[:0], s.audio[1:]...)
	return e, true
}

// Next blocks until an event is available, reliable events first.
// It fails once the sink is closed or the context ends.
func (s *ConnectionSink) Next(ctx context.Context) (event.DomainEvent, error) {
	for {
		select {
		case <-s.done:
			return nil, fmt.Errorf("sink %s closed: %w", s.id, errors.ErrDeliveryFailure)
		default:
		}
		select {
		case e := <-s.reliable:
			return e, nil
		default:
		}
		if e, ok := s.popAudio(); ok {
			return e, nil
		}

		select {
		case e := <-s.reliable:
			return e, nil
		case <-s.audioReady:
		case <-s.done:
			return nil, fmt.Errorf("sink %s closed: %w", s.id, errors.ErrDeliveryFailure)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close is idempotent.
func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed once the sink stops accepting events.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

// Stats samples both lanes.
func (s *ConnectionSink) Stats() event.QueueCapacity {
	s.mu.Lock()
	audioLen := len(s.audio)
	s.mu.Unlock()
	return event.QueueCapacity{
		ConnectionID:   s.id,
		ReliableLength: len(s.reliable),
		ReliableCap:    cap(s.reliable),
		AudioLength:    audioLen,
		AudioCap:       s.audioCap,
		AudioDropped:   s.dropped.Load(),
	}
}
