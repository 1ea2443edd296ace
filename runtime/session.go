package runtime

import (
	"chatline/domain/event"
	"chatline/errors"
	"chatline/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SessionState tracks the one-way lifecycle of a connection.
type SessionState int

const (
	SessionAnonymous SessionState = iota
	SessionBound
	SessionClosed
)

// Session is one live client connection. It starts anonymous, binds to a
// user on the online announcement, and can never rebind to a different
// user without reconnecting. Closing is terminal and happens exactly once.
//
// Session is the connection handle the presence registry stores; the
// transport layer owns the socket, the session owns the outbound queue.
type Session struct {
	ID         string
	log        *slog.Logger
	monitoring *observability.MonitoringManager

	mu     sync.Mutex
	state  SessionState
	userID string

	events    chan event.DomainEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(log *slog.Logger, bufferSize int, monitoring *observability.MonitoringManager) *Session {
	return &Session{
		ID:         uuid.NewString(),
		log:        log,
		monitoring: monitoring,
		events:     make(chan event.DomainEvent, bufferSize),
		done:       make(chan struct{}),
	}
}

// Bind attaches the user identity announced on this connection.
// Re-announcing the same user is tolerated (replayed announce frames);
// announcing a different user on a bound session is rejected.
func (s *Session) Bind(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionClosed:
		return errors.ErrSessionClosed
	case SessionBound:
		if s.userID != userID {
			return errors.ErrSessionBound
		}
		return nil
	default:
		s.state = SessionBound
		s.userID = userID
		return nil
	}
}

// UserID returns the bound identity, if any.
func (s *Session) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.state == SessionBound
}

// Consume queues an event for the writer goroutine. It never blocks:
// when the buffer is full the event is dropped, keeping emits
// fire-and-forget and at-most-once.
func (s *Session) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.events <- e:
		return nil
	default:
		s.monitoring.EventDropped()
		s.log.Warn(fmt.Sprintf("Session %s buffer full, dropping %s", s.ID, e.EventName()))
		return nil
	}
}

// Events is drained by the transport's writer goroutine.
func (s *Session) Events() <-chan event.DomainEvent {
	return s.events
}

// Close marks the session terminal. Safe to call from both the read and
// write sides of the transport; cleanup runs once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = SessionClosed
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed when the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
