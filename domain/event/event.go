// Package event defines the tagged realtime events exchanged with clients.
// One Go type per wire event; the Name is the envelope tag on the socket.
// Payload shapes are validated at the connection boundary before they
// reach the delivery coordinator.
package event

import (
	"chatline/domain"
	"time"

	"github.com/google/uuid"
)

// Name identifies an event on the wire.
type Name string

const (
	// client -> server
	AnnounceOnlineName Name = "announce-online"
	SendMessageName    Name = "send-message"
	ReadReceiptName    Name = "read-receipt"
	TypingStartName    Name = "typing-start"
	TypingStopName     Name = "typing-stop"

	// server -> client
	PresenceSnapshotName      Name = "presence-snapshot"
	UserConnectedName         Name = "user-connected"
	UserDisconnectedName      Name = "user-disconnected"
	MessageReceivedName       Name = "message-delivered-to-recipient"
	MessageAckName            Name = "message-ack"
	MessagesDeliveredBulkName Name = "messages-delivered-bulk"
	MessagesReadBulkName      Name = "messages-read-bulk"
	FriendRequestName         Name = "friend-request"
	FriendAcceptedName        Name = "friend-accepted"
	FriendRequestCancelName   Name = "friend-request-cancel"
	WireErrorName             Name = "error"
)

// DomainEvent is any payload that can be pushed to a connected client.
type DomainEvent interface {
	EventName() Name
}

// MessagePayload is the wire form of a persisted message.
type MessagePayload struct {
	ID         string               `json:"id"`
	SenderID   string               `json:"sender_id"`
	ReceiverID string               `json:"receiver_id"`
	Content    string               `json:"content"`
	Status     domain.MessageStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

func ToMessagePayload(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:         m.ID.String(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
	}
}

// PresenceSnapshot is sent to the announcing connection only, carrying
// every user currently online.
type PresenceSnapshot struct {
	UserIDs []string `json:"user_ids"`
}

func (PresenceSnapshot) EventName() Name { return PresenceSnapshotName }

// UserConnected is the presence delta broadcast to every other connection.
type UserConnected struct {
	UserID string `json:"user_id"`
}

func (UserConnected) EventName() Name { return UserConnectedName }

type UserDisconnected struct {
	UserID string `json:"user_id"`
}

func (UserDisconnected) EventName() Name { return UserDisconnectedName }

// MessageReceived carries a freshly persisted message to its recipient.
type MessageReceived struct {
	Message MessagePayload `json:"message"`
}

func (MessageReceived) EventName() Name { return MessageReceivedName }

// MessageAck echoes the persisted message back to the sender together with
// the client-supplied correlation token, so the optimistic local copy can
// be reconciled with the server-assigned identifier.
type MessageAck struct {
	Message          MessagePayload `json:"message"`
	CorrelationToken string         `json:"correlation_token"`
}

func (MessageAck) EventName() Name { return MessageAckName }

// MessagesDelivered tells an original sender that every pending message
// addressed to RecipientID has just been marked delivered.
type MessagesDelivered struct {
	RecipientID string `json:"recipient_user_id"`
}

func (MessagesDelivered) EventName() Name { return MessagesDeliveredBulkName }

// MessagesRead tells a sender that ReaderID has read their conversation.
type MessagesRead struct {
	ReaderID string `json:"reader_user_id"`
}

func (MessagesRead) EventName() Name { return MessagesReadBulkName }

type TypingStarted struct {
	SenderID string `json:"sender_id"`
}

func (TypingStarted) EventName() Name { return TypingStartName }

type TypingStopped struct {
	SenderID string `json:"sender_id"`
}

func (TypingStopped) EventName() Name { return TypingStopName }

// FriendRequestReceived notifies an online receiver of a new request.
type FriendRequestReceived struct {
	RequestID uuid.UUID `json:"request_id"`
	From      string    `json:"from"`
}

func (FriendRequestReceived) EventName() Name { return FriendRequestName }

// FriendRequestAccepted notifies both parties of a new friendship.
type FriendRequestAccepted struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

func (FriendRequestAccepted) EventName() Name { return FriendAcceptedName }

// FriendRequestCanceled tells the receiver to drop a pending request.
type FriendRequestCanceled struct {
	From string `json:"from"`
}

func (FriendRequestCanceled) EventName() Name { return FriendRequestCancelName }

// WireError reports a rejected inbound frame back to the offending
// connection. Never broadcast.
type WireError struct {
	Message string `json:"message"`
}

func (WireError) EventName() Name { return WireErrorName }
