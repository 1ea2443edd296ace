package runtime

import (
	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/observability"
	"chatline/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Censor masks forbidden content; the moderation package provides the
// Aho-Corasick implementation.
type Censor interface {
	Censor(original string) (string, []string)
}

// Coordinator owns the send/receive/status pipeline: it persists outbound
// messages, computes their initial status from presence, and fans the
// resulting events out to the connections involved. Persistence always
// precedes delivery; no message reaches a socket that was not durably
// stored first.
type Coordinator struct {
	log        *slog.Logger
	registry   contract.IRegistry
	messages   repositories.IMessageRepository
	search     repositories.ISearchIndex
	censor     Censor
	monitoring *observability.MonitoringManager
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry,
	messages repositories.IMessageRepository, search repositories.ISearchIndex,
	censor Censor, monitoring *observability.MonitoringManager) *Coordinator {
	return &Coordinator{
		log:        log,
		registry:   registry,
		messages:   messages,
		search:     search,
		censor:     censor,
		monitoring: monitoring,
	}
}

// Announce binds the session to userID, registers it as online, answers
// with the presence snapshot, broadcasts the presence delta, and runs the
// delivered sweep for messages that arrived while the user was offline.
func (c *Coordinator) Announce(ctx context.Context, session *Session, userID string) error {
	if err := session.Bind(userID); err != nil {
		return err
	}

	snapshot, fresh := c.registry.MarkOnline(userID, session)
	_ = session.Consume(ctx, event.PresenceSnapshot{UserIDs: snapshot})
	c.registry.Broadcast(ctx, event.UserConnected{UserID: userID}, userID)
	// A reconnect or a replayed announce replaces the registry entry
	// without growing it, and its stale teardown later is a registry
	// no-op; the counter has to follow the same accounting.
	if fresh {
		c.monitoring.SessionOnline()
	}

	c.MarkDelivered(ctx, userID)
	return nil
}

// Disconnect removes the session from the registry, guarded by handle
// identity: if the user already reconnected on a newer session this is a
// no-op and no presence delta goes out.
func (c *Coordinator) Disconnect(ctx context.Context, session *Session) {
	session.Close()
	userID, removed := c.registry.MarkOffline(session)
	if !removed {
		return
	}
	c.monitoring.SessionOffline()
	c.registry.Broadcast(ctx, event.UserDisconnected{UserID: userID}, userID)
}

// Send runs the delivery pipeline for one outbound message.
//
// The initial status is a point-in-time decision: delivered if the
// recipient resolves in the registry at that instant, sent otherwise. No
// lock is held across the presence check and the persist; a recipient
// disconnecting in between is tolerated, the sweep on their next
// announce heals the status.
func (c *Coordinator) Send(ctx context.Context, senderID, recipientID, content, correlationToken string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if c.censor != nil {
		var matched []string
		content, matched = c.censor.Censor(content)
		if len(matched) > 0 {
			c.log.Debug("message censored", "sender", senderID, "words", len(matched))
		}
	}

	status := domain.StatusSent
	if _, online := c.registry.Lookup(recipientID); online {
		status = domain.StatusDelivered
	}

	message, err := c.messages.Create(domain.Message{
		SenderID:   senderID,
		ReceiverID: recipientID,
		Content:    content,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		// No fan-out for a message that was not durably stored.
		c.log.Error("message persistence failed", "sender", senderID, "recipient", recipientID, "error", err)
		return domain.Message{}, err
	}
	c.monitoring.MessageSent()

	if c.search != nil {
		if err := c.search.IndexMessage(message); err != nil {
			c.log.Warn("message indexing failed", "message_id", message.ID, "error", err)
		}
	}

	payload := event.ToMessagePayload(message)

	// Presence is re-checked after the persist; the recipient may have
	// come or gone in the meantime and either way the stored status stands.
	if sink, online := c.registry.Lookup(recipientID); online {
		c.emit(ctx, sink, event.MessageReceived{Message: payload})
	}
	if sink, online := c.registry.Lookup(senderID); online {
		c.emit(ctx, sink, event.MessageAck{Message: payload, CorrelationToken: correlationToken})
	}

	return message, nil
}

// MarkDelivered bulk-transitions every message addressed to userID still
// in sent status, then tells each distinct online sender that userID came
// online, so their tick marks update without polling.
func (c *Coordinator) MarkDelivered(ctx context.Context, userID string) {
	senders, err := c.messages.MarkDelivered(userID)
	if err != nil {
		c.log.Error("delivered sweep failed", "user_id", userID, "error", err)
		return
	}
	if len(senders) > 0 {
		c.monitoring.MessagesDelivered(len(senders))
	}

	for _, senderID := range senders {
		if sink, online := c.registry.Lookup(senderID); online {
			c.emit(ctx, sink, event.MessagesDelivered{RecipientID: userID})
		}
	}
}

// MarkRead transitions every message from senderID to readerID into read
// status and notifies the sender once if they are online. A message still
// in sent jumps straight to read.
func (c *Coordinator) MarkRead(ctx context.Context, readerID, senderID string) error {
	count, err := c.messages.MarkRead(readerID, senderID)
	if err != nil {
		c.log.Error("read sweep failed", "reader", readerID, "sender", senderID, "error", err)
		return err
	}
	c.monitoring.MessagesRead(count)

	if sink, online := c.registry.Lookup(senderID); online {
		c.emit(ctx, sink, event.MessagesRead{ReaderID: readerID})
	}
	return nil
}

// RelayTyping forwards a typing signal verbatim to the recipient when
// they are online. Stateless: nothing persisted, nothing buffered, no
// server-side expiry.
func (c *Coordinator) RelayTyping(ctx context.Context, signal domain.TypingSignal) {
	sink, online := c.registry.Lookup(signal.RecipientID)
	if !online {
		return
	}
	if signal.Started {
		c.emit(ctx, sink, event.TypingStarted{SenderID: signal.SenderID})
		return
	}
	c.emit(ctx, sink, event.TypingStopped{SenderID: signal.SenderID})
}

// Notify opportunistically pushes an event to userID if they are online.
// Used by the friend service for request/accept/cancel deltas.
func (c *Coordinator) Notify(ctx context.Context, userID string, e event.DomainEvent) {
	if sink, online := c.registry.Lookup(userID); online {
		c.emit(ctx, sink, e)
	}
}

func (c *Coordinator) emit(ctx context.Context, sink contract.EventSink, e event.DomainEvent) {
	if err := sink.Consume(ctx, e); err != nil {
		c.log.Debug(fmt.Sprintf("emit %s skipped: %v", e.EventName(), err))
	}
}
