// Package domain contains core concepts of the room coordinator.
// This file defines Participant identity rules.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/google/uuid"

// NewConnectionID returns a fresh identity for a network session.
// A reconnecting browser always gets a new one, even with the same display name.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}
