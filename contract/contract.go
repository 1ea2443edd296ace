//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chatline/domain"
	"chatline/domain/event"
	"context"
	"reflect"
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

// EventSink is one live client connection from the core's point of view.
// Consume must never block the caller; implementations buffer and drop.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the process-wide presence map. The zero lookup result means
// the user is offline and messages fall back to store-only delivery.
type IRegistry interface {
	MarkOnline(userID string, sink EventSink) (snapshot []string, fresh bool)
	MarkOffline(sink EventSink) (userID string, removed bool)
	Lookup(userID string) (EventSink, bool)
	Snapshot() []string
	Broadcast(ctx context.Context, e event.DomainEvent, exceptUserID string)
}

// ICoordinator is the send/receive/status pipeline consumed by transports
// and by the friend service for opportunistic notifications.
type ICoordinator interface {
	Send(ctx context.Context, senderID, recipientID, content, correlationToken string) (domain.Message, error)
	MarkDelivered(ctx context.Context, userID string)
	MarkRead(ctx context.Context, readerID, senderID string) error
	RelayTyping(ctx context.Context, signal domain.TypingSignal)
	Notify(ctx context.Context, userID string, e event.DomainEvent)
}
