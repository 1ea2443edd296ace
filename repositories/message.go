//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chatline/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Create(message domain.Message) (domain.Message, error)
	Conversation(userA, userB string) ([]domain.Message, error)
	LastMessage(userA, userB string) (*domain.Message, error)
	MarkDelivered(receiverID string) ([]string, error)
	MarkRead(readerID, senderID string) (int, error)
}

// DiskMessage is the stored form of a message.
type DiskMessage struct {
	ID       string               `json:"id"`
	Sender   string               `json:"sender"`
	Receiver string               `json:"receiver"`
	Content  string               `json:"content"`
	Status   domain.MessageStatus `json:"status"`
	At       int64                `json:"at"` // unix nanoseconds
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// ConversationKey pairs two user IDs order-independently, so that both
// directions of a conversation share one key prefix.
func ConversationKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + "#" + userB
}

// messageKey is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func messageKey(m DiskMessage, convKey string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", convKey, m.At, m.ID))
}

// inboxKey indexes a message persisted in "sent" status under its
// receiver, so the delivered sweep on announce scans only that user's
// pending backlog instead of the whole message keyspace. The suffix is
// the full message key; the sweep reads it back directly.
func inboxKey(receiverID string, msgKey []byte) []byte {
	return []byte("inbox-sent:" + receiverID + ":" + string(msgKey))
}

// Create persists the message and returns it with its server-assigned ID.
func (m MessageRepository) Create(message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	record := fromDomain(message)
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Message{}, err
	}

	convKey := ConversationKey(message.SenderID, message.ReceiverID)
	err = m.db.Update(func(txn *badger.Txn) error {
		key := messageKey(record, convKey)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if record.Status == domain.StatusSent {
			return txn.Set(inboxKey(record.Receiver, key), nil)
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// Conversation returns every message between the two users in ascending
// creation order. The padded timestamp in the key makes the prefix scan
// come back already sorted.
func (m MessageRepository) Conversation(userA, userB string) ([]domain.Message, error) {
	var records []DiskMessage
	prefix := []byte("msg:" + ConversationKey(userA, userB) + ":")

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record DiskMessage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(r DiskMessage, _ int) domain.Message {
		return toDomain(r)
	}), nil
}

// LastMessage returns the most recent message between the two users, or
// nil when they never talked. Uses a reverse scan from the highest
// possible timestamp, mirroring the forward key layout.
func (m MessageRepository) LastMessage(userA, userB string) (*domain.Message, error) {
	prefixStr := "msg:" + ConversationKey(userA, userB) + ":"
	prefix := []byte(prefixStr)
	var record *DiskMessage

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte(prefixStr), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		var r DiskMessage
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		}); err != nil {
			return err
		}
		record = &r
		return nil
	})
	if err != nil || record == nil {
		return nil, err
	}
	return lo.ToPtr(toDomain(*record)), nil
}

// MarkDelivered bulk-transitions every message addressed to receiverID
// still in "sent" status to "delivered", returning the distinct senders
// whose messages were touched. The sweep walks the receiver's inbox
// index rather than the message keyspace, so its cost follows the
// pending backlog, not the store size. Every index entry is consumed,
// including stale ones left by a read receipt that jumped a message
// straight from "sent" to "read". The conditional rewrite happens
// inside a single transaction, so a racing status update cannot regress
// a record.
func (m MessageRepository) MarkDelivered(receiverID string) ([]string, error) {
	var senders []string
	prefix := []byte("inbox-sent:" + receiverID + ":")

	err := m.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var indexKeys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			indexKeys = append(indexKeys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, indexKey := range indexKeys {
			msgKey := indexKey[len(prefix):]

			item, err := txn.Get(msgKey)
			if err == badger.ErrKeyNotFound {
				if err := txn.Delete(indexKey); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}

			var record DiskMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}

			if record.Receiver == receiverID && record.Status.CanTransition(domain.StatusDelivered) {
				record.Status = domain.StatusDelivered
				data, err := json.Marshal(record)
				if err != nil {
					return err
				}
				if err := txn.Set(msgKey, data); err != nil {
					return err
				}
				senders = append(senders, record.Sender)
			}

			if err := txn.Delete(indexKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Uniq(senders), nil
}

// MarkRead bulk-transitions every message from senderID to readerID that
// is not already read, and returns how many records moved. A message
// still in "sent" jumps straight to "read".
func (m MessageRepository) MarkRead(readerID, senderID string) (int, error) {
	count := 0
	prefix := []byte("msg:" + ConversationKey(readerID, senderID) + ":")
	err := m.updateStatusesWithPrefix(prefix, func(r *DiskMessage) bool {
		if r.Sender != senderID || r.Receiver != readerID || !r.Status.CanTransition(domain.StatusRead) {
			return false
		}
		r.Status = domain.StatusRead
		count++
		return true
	})
	return count, err
}

// updateStatusesWithPrefix scans the prefix and rewrites every record the
// apply callback mutates. Runs in one badger transaction; per-record
// atomicity is what keeps the monotonic status invariant safe under
// interleaved handlers.
func (m MessageRepository) updateStatusesWithPrefix(prefix []byte, apply func(*DiskMessage) bool) error {
	return m.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		type pending struct {
			key  []byte
			data []byte
		}
		var writes []pending

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var record DiskMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if !apply(&record) {
				continue
			}
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			writes = append(writes, pending{key: item.KeyCopy(nil), data: data})
		}
		it.Close()

		for _, w := range writes {
			if err := txn.Set(w.key, w.data); err != nil {
				return err
			}
		}
		return nil
	})
}

func fromDomain(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:       message.ID.String(),
		Sender:   message.SenderID,
		Receiver: message.ReceiverID,
		Content:  message.Content,
		Status:   message.Status,
		At:       message.CreatedAt.UnixNano(),
	}
}

func toDomain(record DiskMessage) domain.Message {
	id, _ := uuid.Parse(record.ID)
	return domain.Message{
		ID:         id,
		SenderID:   record.Sender,
		ReceiverID: record.Receiver,
		Content:    record.Content,
		Status:     record.Status,
		CreatedAt:  time.Unix(0, record.At).UTC(),
	}
}
