// Package domain contains core concepts of the chat system.
// This file defines Messages and their delivery status lifecycle.
package domain

import (
	"github.com/google/uuid"
	"time"
)

// MessageStatus is the per-message delivery lifecycle marker.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// rank orders statuses so that transitions can only move forward.
func (s MessageStatus) rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether moving from s to target respects the
// monotonic sent -> delivered -> read order. A jump from sent straight
// to read is allowed; delivered is not a mandatory waypoint.
func (s MessageStatus) CanTransition(target MessageStatus) bool {
	return target.rank() > s.rank()
}

// Valid reports whether s is one of the known statuses.
func (s MessageStatus) Valid() bool {
	return s.rank() >= 0
}

// Message represents one direct message between two users.
// The ID is assigned at persistence time; Status only ever moves forward.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	Status     MessageStatus
	CreatedAt  time.Time
}
