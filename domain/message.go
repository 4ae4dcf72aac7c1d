// Package domain contains core concepts of the room coordinator.
// This file defines chat Message events and related rules.
// Messages are immutable, relayed and never stored.
package domain

import (
	"github.com/google/uuid"
	"time"
)

// Message represents an immutable chat line sent to a room.
type Message struct {
	ID           uuid.UUID
	Room         RoomID
	ConnectionID ConnectionID
	Author       string
	Content      string
	Lang         string
	CreatedAt    time.Time
}
