package repositories

import (
	"chatline/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewSearchIndex(writer, slog.Default())
}

func Test_Search_Is_Scoped_To_The_Conversation(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)
	at := time.Now().UTC()

	// Given the same word in two different conversations
	req.NoError(index.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "bob",
		Content: "pizza tonight?", CreatedAt: at,
	}))
	req.NoError(index.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "carol",
		Content: "pizza tomorrow?", CreatedAt: at,
	}))

	// When searching inside the alice/bob thread
	hits, err := index.Search(context.Background(), "alice", "bob", "pizza", 10)
	req.NoError(err)

	// Then only that thread's message comes back
	req.Len(hits, 1)
	req.Equal("pizza tonight?", hits[0].Content)
	req.Equal("alice", hits[0].SenderID)
}

func Test_Search_Orders_Newest_First(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)
	at := time.Now().UTC()

	req.NoError(index.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "bob",
		Content: "old coffee plan", CreatedAt: at.Add(-time.Hour),
	}))
	req.NoError(index.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "bob", ReceiverID: "alice",
		Content: "new coffee plan", CreatedAt: at,
	}))

	hits, err := index.Search(context.Background(), "bob", "alice", "coffee", 10)
	req.NoError(err)
	req.Len(hits, 2)
	req.Equal("new coffee plan", hits[0].Content)
	req.Equal("old coffee plan", hits[1].Content)
}

func Test_Search_No_Match(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	req.NoError(index.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "bob",
		Content: "hello there", CreatedAt: time.Now().UTC(),
	}))

	hits, err := index.Search(context.Background(), "alice", "bob", "goodbye", 10)
	req.NoError(err)
	req.Empty(hits)
}
