package runtime

import (
	"chatline/domain/event"
	"chatline/errors"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Session_Bind_Lifecycle(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default(), 8, nil)

	_, bound := session.UserID()
	req.False(bound)

	req.NoError(session.Bind("alice"))
	userID, bound := session.UserID()
	req.True(bound)
	req.Equal("alice", userID)

	// Replayed announce for the same user is tolerated
	req.NoError(session.Bind("alice"))

	// A different identity on the same connection is not
	req.ErrorIs(session.Bind("bob"), errors.ErrSessionBound)

	session.Close()
	req.ErrorIs(session.Bind("alice"), errors.ErrSessionClosed)
}

func Test_Session_Consume_After_Close(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default(), 8, nil)

	session.Close()
	err := session.Consume(context.Background(), event.UserConnected{UserID: "bob"})
	req.ErrorIs(err, errors.ErrSessionClosed)
}

func Test_Session_Consume_Drops_When_Buffer_Full(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default(), 1, nil)

	// First event fills the buffer, second is dropped without blocking
	req.NoError(session.Consume(context.Background(), event.UserConnected{UserID: "a"}))
	req.NoError(session.Consume(context.Background(), event.UserConnected{UserID: "b"}))

	e := <-session.Events()
	req.Equal(event.UserConnected{UserID: "a"}, e)

	select {
	case <-session.Events():
		t.Fatal("second event should have been dropped")
	default:
	}
}

func Test_Session_Close_Is_Idempotent(t *testing.T) {
	session := NewSession(slog.Default(), 8, nil)
	session.Close()
	session.Close()

	select {
	case <-session.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
