package protocol

// Inbound is a decoded client event.
type Inbound interface {
	EventName() string
}

const (
	JoinEvent        = "join"
	LeaveEvent       = "leave"
	CodeChangeEvent  = "code-change"
	SyncCodeEvent    = "sync-code"
	StartAudioEvent  = "start-audio"
	StopAudioEvent   = "stop-audio"
	AudioDataEvent   = "audio-data"
	SendMessageEvent = "send-message"
)

type Join struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	Username string `json:"username" validate:"required,max=64"`
}

type Leave struct{}

// CodeChange carries the whole buffer, never a diff.
type CodeChange struct {
	Code string `json:"code"`
}

type SyncCode struct {
	Code     string `json:"code"`
	SocketID string `json:"socketId" validate:"required,max=64"`
}

// StartAudio and StopAudio carry room and user for older clients.
// The server ignores both and uses the connection's binding.
type StartAudio struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type StopAudio struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type AudioData struct {
	RoomID     string `json:"roomId"`
	AudioChunk string `json:"audioChunk" validate:"required"`
	UserID     string `json:"userId"`
	Mime       string `json:"mime" validate:"max=128"`
}

type SendMessage struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (Join) EventName() string        { return JoinEvent }
func (Leave) EventName() string       { return LeaveEvent }
func (CodeChange) EventName() string  { return CodeChangeEvent }
func (SyncCode) EventName() string    { return SyncCodeEvent }
func (StartAudio) EventName() string  { return StartAudioEvent }
func (StopAudio) EventName() string   { return StopAudioEvent }
func (AudioData) EventName() string   { return AudioDataEvent }
func (SendMessage) EventName() string { return SendMessageEvent }

var inbound = map[string]func() any{
	JoinEvent:        func() any { return &Join{} },
	LeaveEvent:       func() any { return &Leave{} },
	CodeChangeEvent:  func() any { return &CodeChange{} },
	SyncCodeEvent:    func() any { return &SyncCode{} },
	StartAudioEvent:  func() any { return &StartAudio{} },
	StopAudioEvent:   func() any { return &StopAudio{} },
	AudioDataEvent:   func() any { return &AudioData{} },
	SendMessageEvent: func() any { return &SendMessage{} },
}

// deref hands out values so callers can type switch on plain structs.
func deref(in any) Inbound {
	switch v := in.(type) {
	case *Join:
		return *v
	case *Leave:
		return *v
	case *CodeChange:
		return *v
	case *SyncCode:
		return *v
	case *StartAudio:
		return *v
	case *StopAudio:
		return *v
	case *AudioData:
		return *v
	case *SendMessage:
		return *v
	}
	return nil
}

// EncodeInbound builds a client frame, used by the CLI client and tests.
func EncodeInbound(in Inbound) ([]byte, error) {
	return encode(in.EventName(), in)
}
