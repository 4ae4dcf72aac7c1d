//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"sourcesync/domain"
	"sourcesync/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the outbound side of one connection.
// Consume must never block on network I/O.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
	Close()
}

// Session is one registered connection as seen by the relay.
type Session struct {
	ConnectionID domain.ConnectionID
	Room         domain.RoomID
	DisplayName  string
	Sink         EventSink
}

type IRegistry interface {
	Register(id domain.ConnectionID, room domain.RoomID, displayName string, sink EventSink) error
	Resolve(id domain.ConnectionID) (domain.Binding, error)
	Unregister(id domain.ConnectionID) (domain.Binding, error)
	Participants(room domain.RoomID) []domain.Participant
	GetSinksForRoom(room domain.RoomID) []Session
	Sessions() []Session
	Sink(id domain.ConnectionID) (EventSink, bool)
	Len() int
	Count(room domain.RoomID) int
	Clear() []Session
}

type IRelay interface {
	Broadcast(ctx context.Context, room domain.RoomID, e event.DomainEvent, exclude ...domain.ConnectionID) int
	Deliver(ctx context.Context, room domain.RoomID, target domain.ConnectionID, e event.DomainEvent) error
}

// MessageFilter sanitizes chat content before it is relayed.
type MessageFilter interface {
	Sanitize(content string) (sanitized string, lang string)
}

// CodeExecutor runs source code on an external sandbox.
type CodeExecutor interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error)
}
