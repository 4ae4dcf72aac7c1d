package services

import (
	"context"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/runtime"
)

// IRoomService is what transports see of the coordinator.
type IRoomService interface {
	Join(ctx context.Context, id domain.ConnectionID, room domain.RoomID, displayName string, sink contract.EventSink) (domain.Roster, error)
	Leave(ctx context.Context, id domain.ConnectionID) error
	ChangeCode(ctx context.Context, id domain.ConnectionID, code string) error
	SyncCode(ctx context.Context, id, target domain.ConnectionID, code string) error
	StartAudio(ctx context.Context, id domain.ConnectionID) error
	StopAudio(ctx context.Context, id domain.ConnectionID) error
	RelayAudioChunk(ctx context.Context, id domain.ConnectionID, chunk, mime string) error
	SendMessage(ctx context.Context, id domain.ConnectionID, content string) (domain.Message, error)
	Rooms() []domain.RoomSummary
	Roster(room domain.RoomID) (domain.Roster, bool)
	Connections() int
	Closed() bool
}

type RoomService struct {
	*runtime.Coordinator
}

var _ IRoomService = (*RoomService)(nil)

func NewRoomService(coordinator *runtime.Coordinator) *RoomService {
	return &RoomService{Coordinator: coordinator}
}
