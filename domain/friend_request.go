// Package domain contains core concepts of the chat system.
// This file defines FriendRequests. Their state machine is owned by the
// friend service; the realtime core only consumes accepted transitions.
package domain

import (
	"github.com/google/uuid"
	"time"
)

// FriendRequestStatus is the lifecycle of a friend request.
type FriendRequestStatus string

const (
	RequestPending  FriendRequestStatus = "pending"
	RequestAccepted FriendRequestStatus = "accepted"
	RequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is a directed invitation from SenderID to ReceiverID.
// At most one non-rejected request may exist per ordered pair.
type FriendRequest struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Status     FriendRequestStatus
	CreatedAt  time.Time
}
