package services

import (
	"chatline/domain"
	"chatline/domain/event"
	"chatline/repositories"
	"context"

	"github.com/samber/lo"
)

// ConversationSummary is one row of the contact list: the friend plus the
// most recent message exchanged with them, if any.
type ConversationSummary struct {
	User        domain.PublicUser     `json:"user"`
	LastMessage *event.MessagePayload `json:"last_message,omitempty"`
}

type IConversationService interface {
	History(userID, otherID string) ([]event.MessagePayload, error)
	FriendsWithLastMessage(userID string) ([]ConversationSummary, error)
	Search(ctx context.Context, userID, otherID, terms string, limit int) ([]repositories.SearchHit, error)
}

type ConversationService struct {
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	search   repositories.ISearchIndex
}

func NewConversationService(users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	search repositories.ISearchIndex) IConversationService {
	return &ConversationService{users: users, messages: messages, search: search}
}

// History returns the full conversation between the caller and otherID,
// oldest first. The caller is always one of the two parties, so no extra
// authorization is needed beyond authentication.
func (s *ConversationService) History(userID, otherID string) ([]event.MessagePayload, error) {
	messages, err := s.messages.Conversation(userID, otherID)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m domain.Message, _ int) event.MessagePayload {
		return event.ToMessagePayload(m)
	}), nil
}

// FriendsWithLastMessage backs the contact sidebar: every friend, each
// paired with the latest message of that conversation.
func (s *ConversationService) FriendsWithLastMessage(userID string) ([]ConversationSummary, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	friends, err := s.users.ListByIDs(user.Friends)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(friends))
	for _, friend := range friends {
		summary := ConversationSummary{User: friend.ToDomain().Public()}

		last, err := s.messages.LastMessage(userID, friend.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			payload := event.ToMessagePayload(*last)
			summary.LastMessage = &payload
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *ConversationService) Search(ctx context.Context, userID, otherID, terms string, limit int) ([]repositories.SearchHit, error) {
	return s.search.Search(ctx, userID, otherID, terms, limit)
}
