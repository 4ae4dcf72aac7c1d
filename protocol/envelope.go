// Package protocol is the wire schema shared by the server and its clients.
// Every frame is a JSON envelope {"v":1,"event":"<name>","data":{...}}.
package protocol

import (
	"encoding/json"
	"fmt"
	"sourcesync/errors"

	"github.com/go-playground/validator/v10"
)

// Version is the only protocol version spoken. A missing "v" means 1.
const Version = 1

var validate = validator.New()

type Envelope struct {
	V     int             `json:"v"`
	Event string          `json:"event" validate:"required,max=64"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode parses and validates one client frame.
func Decode(raw []byte) (Inbound, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("envelope: %v: %w", err, errors.ErrInvalidPayload)
	}
	if err := validate.Struct(envelope); err != nil {
		return nil, fmt.Errorf("envelope: %v: %w", err, errors.ErrInvalidPayload)
	}
	if envelope.V == 0 {
		envelope.V = Version
	}
	if envelope.V != Version {
		return nil, fmt.Errorf("version %d: %w", envelope.V, errors.ErrUnsupportedVersion)
	}

	newInbound, ok := inbound[envelope.Event]
	if !ok {
		return nil, fmt.Errorf("%q: %w", envelope.Event, errors.ErrUnknownEvent)
	}
	in := newInbound()
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, in); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", envelope.Event, err, errors.ErrInvalidPayload)
		}
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", envelope.Event, err, errors.ErrInvalidPayload)
	}
	return deref(in), nil
}

func encode(name string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{V: Version, Event: name, Data: payload})
}
