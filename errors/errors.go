package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRegistered  = fmt.Errorf("connection already registered")
	ErrUnknownConnection  = fmt.Errorf("unknown connection")
	ErrNotInRoom          = fmt.Errorf("connection is not a member of the room")
	ErrDeliveryFailure    = fmt.Errorf("delivery failure")
	ErrTransport          = fmt.Errorf("transport error")
	ErrInvalidPayload     = fmt.Errorf("invalid payload")
	ErrUnsupportedVersion = fmt.Errorf("unsupported protocol version")
	ErrUnknownEvent       = fmt.Errorf("unknown event")
	ErrExecution          = fmt.Errorf("code execution failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles  = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)

// Is saves callers from importing both error packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
