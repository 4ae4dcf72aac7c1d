package protocol

import (
	"fmt"
	"sourcesync/domain"
	"sourcesync/domain/event"
	"time"

	"github.com/samber/lo"
)

type Client struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
	IsMuted  bool   `json:"isMuted"`
}

type Joined struct {
	Clients  []Client `json:"clients"`
	Username string   `json:"username"`
	SocketID string   `json:"socketId"`
}

type Disconnected struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

type CodeSynced struct {
	Code     string `json:"code"`
	SocketID string `json:"socketId"`
}

type AudioPresence struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

type AudioChunk struct {
	AudioChunk string `json:"audioChunk"`
	UserID     string `json:"userId"`
	SocketID   string `json:"socketId"`
	Mime       string `json:"mime"`
}

type NewMessage struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	SocketID string    `json:"socketId"`
	Message  string    `json:"message"`
	Lang     string    `json:"lang,omitempty"`
	At       time.Time `json:"at"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Clients is the wire form of a roster. A participant is muted unless sharing.
func Clients(roster domain.Roster) []Client {
	return lo.Map(roster, func(p domain.Participant, _ int) Client {
		return Client{SocketID: string(p.ConnectionID), Username: p.DisplayName, IsMuted: !p.Sharing}
	})
}

// Encode turns a room event into its wire frame.
func Encode(e event.DomainEvent) ([]byte, error) {
	name := string(e.Kind())
	switch v := e.(type) {
	case event.Joined:
		return encode(name, Joined{
			Clients:  Clients(v.Roster),
			Username: v.NewDisplayName,
			SocketID: string(v.NewConnectionID),
		})
	case event.Disconnected:
		return encode(name, Disconnected{SocketID: string(v.ConnectionID), Username: v.DisplayName})
	case event.CodeChanged:
		return encode(name, CodeChange{Code: v.Code})
	case event.CodeSynced:
		return encode(name, CodeSynced{Code: v.Code, SocketID: string(v.From)})
	case event.AudioStarted:
		return encode(name, AudioPresence{UserID: v.DisplayName, SocketID: string(v.ConnectionID)})
	case event.AudioStopped:
		return encode(name, AudioPresence{UserID: v.DisplayName, SocketID: string(v.ConnectionID)})
	case event.AudioChunk:
		return encode(name, AudioChunk{
			AudioChunk: v.Chunk,
			UserID:     v.DisplayName,
			SocketID:   string(v.ConnectionID),
			Mime:       v.Mime,
		})
	case event.MessagePosted:
		return encode(name, NewMessage{
			ID:       v.Message.ID.String(),
			Username: v.Message.Author,
			SocketID: string(v.Message.ConnectionID),
			Message:  v.Message.Content,
			Lang:     v.Message.Lang,
			At:       v.Message.CreatedAt,
		})
	case event.Rejected:
		return encode(name, Error{Code: v.Code, Message: v.Message})
	}
	return nil, fmt.Errorf("no wire form for %T", e)
}
