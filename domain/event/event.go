package event

import (
	"sourcesync/domain"
)

// Kind is the wire name of a room event.
type Kind string

const (
	JoinedKind           Kind = "joined"
	DisconnectedKind     Kind = "disconnected"
	CodeChangeKind       Kind = "code-change"
	SyncCodeKind         Kind = "sync-code"
	UserStartedAudioKind Kind = "user-started-audio"
	UserStoppedAudioKind Kind = "user-stopped-audio"
	AudioDataKind        Kind = "audio-data"
	NewMessageKind       Kind = "new-message"
	RejectedKind         Kind = "error"
)

// DomainEvent is anything the relay can push into a connection sink.
type DomainEvent interface {
	RoomID() domain.RoomID
	Kind() Kind
}

// Lossy reports whether the event may be dropped under backpressure.
// Only audio chunks are loss-tolerant.
func Lossy(e DomainEvent) bool {
	return e.Kind() == AudioDataKind
}

// Joined carries the authoritative roster after a join.
type Joined struct {
	Room            domain.RoomID
	Roster          domain.Roster
	NewConnectionID domain.ConnectionID
	NewDisplayName  string
}

func (e Joined) RoomID() domain.RoomID { return e.Room }
func (e Joined) Kind() Kind            { return JoinedKind }

type Disconnected struct {
	Room         domain.RoomID
	ConnectionID domain.ConnectionID
	DisplayName  string
}

func (e Disconnected) RoomID() domain.RoomID { return e.Room }
func (e Disconnected) Kind() Kind            { return DisconnectedKind }

// CodeChanged is the whole editor buffer, last write wins.
type CodeChanged struct {
	Room domain.RoomID
	From domain.ConnectionID
	Code string
}

func (e CodeChanged) RoomID() domain.RoomID { return e.Room }
func (e CodeChanged) Kind() Kind            { return CodeChangeKind }

// CodeSynced is relayed to exactly one newcomer.
type CodeSynced struct {
	Room   domain.RoomID
	From   domain.ConnectionID
	Target domain.ConnectionID
	Code   string
}

func (e CodeSynced) RoomID() domain.RoomID { return e.Room }
func (e CodeSynced) Kind() Kind            { return SyncCodeKind }

type AudioStarted struct {
	Room         domain.RoomID
	ConnectionID domain.ConnectionID
	DisplayName  string
}

func (e AudioStarted) RoomID() domain.RoomID { return e.Room }
func (e AudioStarted) Kind() Kind            { return UserStartedAudioKind }

// AudioStopped is emitted on an explicit stop, or synthetically when a
// sharing participant disconnects.
type AudioStopped struct {
	Room         domain.RoomID
	ConnectionID domain.ConnectionID
	DisplayName  string
	Synthetic    bool
}

func (e AudioStopped) RoomID() domain.RoomID { return e.Room }
func (e AudioStopped) Kind() Kind            { return UserStoppedAudioKind }

type AudioChunk struct {
	Room         domain.RoomID
	ConnectionID domain.ConnectionID
	DisplayName  string
	Chunk        string
	Mime         string
}

func (e AudioChunk) RoomID() domain.RoomID { return e.Room }
func (e AudioChunk) Kind() Kind            { return AudioDataKind }

type MessagePosted struct {
	Message domain.Message
}

func (e MessagePosted) RoomID() domain.RoomID { return e.Message.Room }
func (e MessagePosted) Kind() Kind            { return NewMessageKind }

// Rejected is sent back to the initiating connection only.
type Rejected struct {
	Room    domain.RoomID
	Code    string
	Message string
}

func (e Rejected) RoomID() domain.RoomID { return e.Room }
func (e Rejected) Kind() Kind            { return RejectedKind }
