//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_index.go -package=mocks
package repositories

import (
	"chatline/domain"
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
)

type ISearchIndex interface {
	IndexMessage(message domain.Message) error
	Search(ctx context.Context, userA, userB, terms string, limit int) ([]SearchHit, error)
}

// SearchHit is one full-text match inside a conversation.
type SearchHit struct {
	MessageID string    `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	At        time.Time `json:"at"`
}

// SearchIndex maintains a bluge full-text index over message content,
// scoped per conversation so a user can only ever query threads they are
// part of (the conversation term is derived server-side).
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

func (s *SearchIndex) IndexMessage(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("conversation", ConversationKey(message.SenderID, message.ReceiverID))).
		AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.CreatedAt).StoreValue().Sortable())

	return s.writer.Update(doc.ID(), doc)
}

// Search matches terms against the conversation between the two users,
// newest first.
func (s *SearchIndex) Search(ctx context.Context, userA, userB, terms string, limit int) ([]SearchHit, error) {
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(ConversationKey(userA, userB)).SetField("conversation"))

	request := bluge.NewTopNSearch(limit, query).SortBy([]string{"-at"})

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("failed to close bluge reader", "error", err)
		}
	}()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "content":
				hit.Content = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "at":
				if at, parseErr := bluge.DecodeDateTime(value); parseErr == nil {
					hit.At = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}
