package sink

import (
	"context"
	"sourcesync/domain/event"
	"sourcesync/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chunk(data string) event.AudioChunk {
	return event.AudioChunk{Room: "abc123", ConnectionID: "alice", Chunk: data}
}

func TestConnectionSink_Reliable_Overflow_Closes_Sink(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewConnectionSink("bob", 2, 4)

	// Given the reliable lane is full
	req.NoError(s.Consume(ctx, event.CodeChanged{Code: "1"}))
	req.NoError(s.Consume(ctx, event.CodeChanged{Code: "2"}))

	// When one more reliable event arrives
	err := s.Consume(ctx, event.CodeChanged{Code: "3"})

	// Then nothing is silently dropped: the sink closes
	req.ErrorIs(err, errors.ErrDeliveryFailure)
	select {
	case <-s.Done():
	default:
		req.Fail("sink should be closed")
	}
	req.ErrorIs(s.Consume(ctx, event.CodeChanged{Code: "4"}), errors.ErrDeliveryFailure)
	_, err = s.Next(ctx)
	req.ErrorIs(err, errors.ErrDeliveryFailure)
}

func TestConnectionSink_Audio_Drops_Oldest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewConnectionSink("bob", 2, 2)

	// When more chunks arrive than the audio ring holds
	for _, data := range []string{"a", "b", "c"} {
		req.NoError(s.Consume(ctx, chunk(data)))
	}

	// Then the oldest is gone and the rest keep their order
	stats := s.Stats()
	req.Equal(uint64(1), stats.AudioDropped)
	req.Equal(2, stats.AudioLength)

	first, err := s.Next(ctx)
	req.NoError(err)
	req.Equal("b", first.(event.AudioChunk).Chunk)
	second, err := s.Next(ctx)
	req.NoError(err)
	req.Equal("c", second.(event.AudioChunk).Chunk)
}

func TestConnectionSink_Next_Prefers_Reliable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewConnectionSink("bob", 4, 4)

	req.NoError(s.Consume(ctx, chunk("a")))
	req.NoError(s.Consume(ctx, event.Disconnected{ConnectionID: "alice"}))

	e, err := s.Next(ctx)
	req.NoError(err)
	req.Equal(event.DisconnectedKind, e.Kind())
	e, err = s.Next(ctx)
	req.NoError(err)
	req.Equal(event.AudioDataKind, e.Kind())
}

func TestConnectionSink_Next_Waits_For_Audio(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink("bob", 4, 4)

	got := make(chan event.DomainEvent, 1)
	go func() {
		e, err := s.Next(context.Background())
		if err == nil {
			got <- e
		}
	}()

	time.Sleep(10 * time.Millisecond)
	req.NoError(s.Consume(context.Background(), chunk("late")))

	select {
	case e := <-got:
		req.Equal("late", e.(event.AudioChunk).Chunk)
	case <-time.After(time.Second):
		req.Fail("Next did not wake up on audio")
	}
}

func TestConnectionSink_Next_Honors_Context(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink("bob", 1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestConnectionSink_Close_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink("bob", 1, 1)

	s.Close()
	s.Close()

	stats := s.Stats()
	req.Equal(1, stats.ReliableCap)
	req.Equal(1, stats.AudioCap)
	req.Equal("bob", string(stats.ConnectionID))
}
