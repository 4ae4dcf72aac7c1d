package protocol

import (
	"sourcesync/domain"
	"sourcesync/domain/event"
	"sourcesync/errors"
)

// Error codes carried by "error" frames.
const (
	CodeAlreadyRegistered  = "already-registered"
	CodeNotInRoom          = "not-in-room"
	CodeNotJoined          = "not-joined"
	CodeInvalidPayload     = "invalid-payload"
	CodeUnsupportedVersion = "unsupported-version"
	CodeUnknownEvent       = "unknown-event"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

var rejections = []struct {
	err  error
	code string
}{
	{errors.ErrAlreadyRegistered, CodeAlreadyRegistered},
	{errors.ErrNotInRoom, CodeNotInRoom},
	{errors.ErrUnknownConnection, CodeNotJoined},
	{errors.ErrInvalidPayload, CodeInvalidPayload},
	{errors.ErrUnsupportedVersion, CodeUnsupportedVersion},
	{errors.ErrUnknownEvent, CodeUnknownEvent},
	{errors.ErrTransport, CodeUnavailable},
}

// Reject maps a handler error to the frame sent back to the initiating client.
func Reject(room domain.RoomID, err error) event.Rejected {
	code := CodeInternal
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			code = r.code
			break
		}
	}
	return event.Rejected{Room: room, Code: code, Message: err.Error()}
}
