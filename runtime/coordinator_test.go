package runtime

import (
	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/mocks"
	"chatline/observability"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// drain empties the session buffer without blocking.
func drain(session *Session) []event.DomainEvent {
	var events []event.DomainEvent
	for {
		select {
		case e := <-session.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func newTestCoordinator(t *testing.T, messages *mocks.MockIMessageRepository) (*Coordinator, *Registry) {
	t.Helper()
	registry := NewRegistry()
	return NewCoordinator(slog.Default(), registry, messages, nil, nil, nil), registry
}

func announce(t *testing.T, c *Coordinator, userID string) *Session {
	t.Helper()
	session := NewSession(slog.Default(), 8, nil)
	require.NoError(t, c.Announce(context.Background(), session, userID))
	return session
}

func Test_Announce_Snapshot_Delta_And_Sweep(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)

	coordinator, _ := newTestCoordinator(t, messages)

	// Given bob online with nothing pending
	messages.EXPECT().MarkDelivered("bob").Return(nil, nil)
	bob := announce(t, coordinator, "bob")
	drain(bob)

	// And messages from bob waiting for alice
	messages.EXPECT().MarkDelivered("alice").Return([]string{"bob"}, nil)

	// When alice announces
	alice := announce(t, coordinator, "alice")

	// Then alice gets the presence snapshot including herself
	aliceEvents := drain(alice)
	req.Len(aliceEvents, 1)
	snapshot, ok := aliceEvents[0].(event.PresenceSnapshot)
	req.True(ok)
	req.ElementsMatch([]string{"alice", "bob"}, snapshot.UserIDs)

	// And bob gets the presence delta plus the delivered sweep result
	bobEvents := drain(bob)
	req.Len(bobEvents, 2)
	req.Equal(event.UserConnected{UserID: "alice"}, bobEvents[0])
	req.Equal(event.MessagesDelivered{RecipientID: "alice"}, bobEvents[1])
}

func Test_Send_To_Online_Recipient(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered(gomock.Any()).Return(nil, nil).Times(2)
	alice := announce(t, coordinator, "alice")
	bob := announce(t, coordinator, "bob")
	drain(alice)
	drain(bob)

	// The recipient is online, so the message persists as delivered
	messages.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(m domain.Message) (domain.Message, error) {
			req.Equal(domain.StatusDelivered, m.Status)
			m.ID = uuid.New()
			return m, nil
		})

	message, err := coordinator.Send(context.Background(), "alice", "bob", "hello bob", "tok-1")
	req.NoError(err)
	req.Equal(domain.StatusDelivered, message.Status)

	bobEvents := drain(bob)
	req.Len(bobEvents, 1)
	received, ok := bobEvents[0].(event.MessageReceived)
	req.True(ok)
	req.Equal("hello bob", received.Message.Content)

	aliceEvents := drain(alice)
	req.Len(aliceEvents, 1)
	ack, ok := aliceEvents[0].(event.MessageAck)
	req.True(ok)
	req.Equal("tok-1", ack.CorrelationToken)
	req.Equal(message.ID.String(), ack.Message.ID)
}

func Test_Send_To_Offline_Recipient(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered("alice").Return(nil, nil)
	alice := announce(t, coordinator, "alice")
	drain(alice)

	// Nobody home: the message persists as sent
	messages.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(m domain.Message) (domain.Message, error) {
			req.Equal(domain.StatusSent, m.Status)
			m.ID = uuid.New()
			return m, nil
		})

	message, err := coordinator.Send(context.Background(), "alice", "bob", "anyone there?", "tok-2")
	req.NoError(err)
	req.Equal(domain.StatusSent, message.Status)

	// The sender still gets the ack
	aliceEvents := drain(alice)
	req.Len(aliceEvents, 1)
	_, ok := aliceEvents[0].(event.MessageAck)
	req.True(ok)
}

func Test_Send_Rejects_Blank_Content(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().Create(gomock.Any()).Times(0)

	_, err := coordinator.Send(context.Background(), "alice", "bob", "   \t  ", "tok")
	req.ErrorIs(err, errors.ErrEmptyMessage)
}

func Test_Send_No_Fanout_On_Persistence_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered(gomock.Any()).Return(nil, nil).Times(2)
	alice := announce(t, coordinator, "alice")
	bob := announce(t, coordinator, "bob")
	drain(alice)
	drain(bob)

	messages.EXPECT().Create(gomock.Any()).Return(domain.Message{}, fmt.Errorf("disk full"))

	_, err := coordinator.Send(context.Background(), "alice", "bob", "hello", "tok")
	req.Error(err)

	// No message reaches a socket when the store rejected it
	req.Empty(drain(bob))
	req.Empty(drain(alice))
}

type maskAllCensor struct{}

func (maskAllCensor) Censor(original string) (string, []string) {
	return "***", []string{"original"}
}

func Test_Send_Applies_Censorship_Before_Persisting(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	registry := NewRegistry()
	coordinator := NewCoordinator(slog.Default(), registry, messages, nil, maskAllCensor{}, nil)

	messages.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(m domain.Message) (domain.Message, error) {
			req.Equal("***", m.Content)
			m.ID = uuid.New()
			return m, nil
		})

	_, err := coordinator.Send(context.Background(), "alice", "bob", "something rude", "tok")
	req.NoError(err)
}

func Test_MarkRead_Notifies_Online_Sender_Once(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered("bob").Return(nil, nil)
	bob := announce(t, coordinator, "bob")
	drain(bob)

	messages.EXPECT().MarkRead("alice", "bob").Return(3, nil)

	req.NoError(coordinator.MarkRead(context.Background(), "alice", "bob"))

	// A single notification regardless of how many records moved
	bobEvents := drain(bob)
	req.Len(bobEvents, 1)
	req.Equal(event.MessagesRead{ReaderID: "alice"}, bobEvents[0])
}

func Test_MarkRead_Offline_Sender_No_Event(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkRead("alice", "bob").Return(1, nil)
	req.NoError(coordinator.MarkRead(context.Background(), "alice", "bob"))
}

func Test_RelayTyping(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, _ := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered("bob").Return(nil, nil)
	bob := announce(t, coordinator, "bob")
	drain(bob)

	coordinator.RelayTyping(context.Background(), domain.TypingSignal{
		SenderID: "alice", RecipientID: "bob", Started: true,
	})
	coordinator.RelayTyping(context.Background(), domain.TypingSignal{
		SenderID: "alice", RecipientID: "bob", Started: false,
	})

	// Signals to an offline recipient vanish
	coordinator.RelayTyping(context.Background(), domain.TypingSignal{
		SenderID: "bob", RecipientID: "carol", Started: true,
	})

	bobEvents := drain(bob)
	req.Len(bobEvents, 2)
	req.Equal(event.TypingStarted{SenderID: "alice"}, bobEvents[0])
	req.Equal(event.TypingStopped{SenderID: "alice"}, bobEvents[1])
}

func Test_Online_Counter_Survives_Reconnect_Churn(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	registry := NewRegistry()
	monitoring := observability.NewMonitoringManager(slog.Default())
	coordinator := NewCoordinator(slog.Default(), registry, messages, nil, nil, monitoring)

	messages.EXPECT().MarkDelivered("alice").Return(nil, nil).AnyTimes()

	// Given alice reconnects before her old session is torn down
	oldSession := announce(t, coordinator, "alice")
	newSession := announce(t, coordinator, "alice")
	req.EqualValues(1, monitoring.GetLatest().OnlineUsers)

	// And the live session replays its announce
	req.NoError(coordinator.Announce(context.Background(), newSession, "alice"))
	req.EqualValues(1, monitoring.GetLatest().OnlineUsers)

	// When both sessions go away
	coordinator.Disconnect(context.Background(), oldSession)
	coordinator.Disconnect(context.Background(), newSession)

	// Then the counter matches the empty registry
	req.Empty(registry.Snapshot())
	req.EqualValues(0, monitoring.GetLatest().OnlineUsers)
}

func Test_Disconnect_Stale_Session_Keeps_User_Online(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	coordinator, registry := newTestCoordinator(t, messages)

	messages.EXPECT().MarkDelivered(gomock.Any()).Return(nil, nil).Times(3)
	bob := announce(t, coordinator, "bob")

	// Alice reconnects before her old session is torn down
	oldSession := announce(t, coordinator, "alice")
	newSession := announce(t, coordinator, "alice")
	drain(bob)

	// When the stale session disconnects
	coordinator.Disconnect(context.Background(), oldSession)

	// Then alice stays online and nobody hears about it
	_, online := registry.Lookup("alice")
	req.True(online)
	req.Empty(drain(bob))

	// The live session disconnecting does broadcast
	coordinator.Disconnect(context.Background(), newSession)
	_, online = registry.Lookup("alice")
	req.False(online)

	bobEvents := drain(bob)
	req.Len(bobEvents, 1)
	req.Equal(event.UserDisconnected{UserID: "alice"}, bobEvents[0])
}
