//go:generate go run go.uber.org/mock/mockgen -source=friend_request.go -destination=../mocks/mock_friend_request_repository.go -package=mocks
package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IFriendRequestRepository interface {
	Create(senderID, receiverID string) (domain.FriendRequest, error)
	Get(id uuid.UUID) (domain.FriendRequest, error)
	UpdateStatus(id uuid.UUID, status domain.FriendRequestStatus) (domain.FriendRequest, error)
	Delete(id uuid.UUID) error
	IncomingPending(receiverID string) ([]domain.FriendRequest, error)
	OutgoingPending(senderID string) ([]domain.FriendRequest, error)
	RelatedUserIDs(userID string) ([]string, error)
}

type diskFriendRequest struct {
	ID       string                     `json:"id"`
	Sender   string                     `json:"sender"`
	Receiver string                     `json:"receiver"`
	Status   domain.FriendRequestStatus `json:"status"`
	At       int64                      `json:"at"`
}

type FriendRequestRepository struct {
	db *badger.DB
}

func NewFriendRequestRepository(db *badger.DB) IFriendRequestRepository {
	return &FriendRequestRepository{db: db}
}

func requestKey(id string) []byte { return []byte("freq:" + id) }

// Create persists a new pending request. A non-rejected request in either
// direction between the two users is a conflict; the check runs inside the
// write transaction to keep the uniqueness constraint race-free in-process.
func (f FriendRequestRepository) Create(senderID, receiverID string) (domain.FriendRequest, error) {
	request := domain.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(fromDomainRequest(request))
	if err != nil {
		return domain.FriendRequest{}, err
	}

	err = f.db.Update(func(txn *badger.Txn) error {
		existing, err := scanRequests(txn, func(r diskFriendRequest) bool {
			samePair := (r.Sender == senderID && r.Receiver == receiverID) ||
				(r.Sender == receiverID && r.Receiver == senderID)
			return samePair && r.Status != domain.RequestRejected
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errors.ErrRequestExists
		}
		return txn.Set(requestKey(request.ID.String()), data)
	})
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return request, nil
}

func (f FriendRequestRepository) Get(id uuid.UUID) (domain.FriendRequest, error) {
	var record diskFriendRequest
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(requestKey(id.String()))
		if err != nil {
			return errors.ErrRequestNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return toDomainRequest(record)
}

func (f FriendRequestRepository) UpdateStatus(id uuid.UUID, status domain.FriendRequestStatus) (domain.FriendRequest, error) {
	var record diskFriendRequest
	err := f.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(requestKey(id.String()))
		if err != nil {
			return errors.ErrRequestNotFound
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		record.Status = status
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(requestKey(id.String()), data)
	})
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return toDomainRequest(record)
}

func (f FriendRequestRepository) Delete(id uuid.UUID) error {
	return f.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(requestKey(id.String())); err != nil {
			return errors.ErrRequestNotFound
		}
		return txn.Delete(requestKey(id.String()))
	})
}

func (f FriendRequestRepository) IncomingPending(receiverID string) ([]domain.FriendRequest, error) {
	return f.list(func(r diskFriendRequest) bool {
		return r.Receiver == receiverID && r.Status == domain.RequestPending
	})
}

func (f FriendRequestRepository) OutgoingPending(senderID string) ([]domain.FriendRequest, error) {
	return f.list(func(r diskFriendRequest) bool {
		return r.Sender == senderID && r.Status == domain.RequestPending
	})
}

// RelatedUserIDs returns every user with a pending or accepted request
// involving userID, used to exclude them from discovery.
func (f FriendRequestRepository) RelatedUserIDs(userID string) ([]string, error) {
	requests, err := f.list(func(r diskFriendRequest) bool {
		involved := r.Sender == userID || r.Receiver == userID
		return involved && r.Status != domain.RequestRejected
	})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range requests {
		for _, id := range []string{r.SenderID, r.ReceiverID} {
			if id == userID {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (f FriendRequestRepository) list(match func(diskFriendRequest) bool) ([]domain.FriendRequest, error) {
	var records []diskFriendRequest
	err := f.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = scanRequests(txn, match)
		return err
	})
	if err != nil {
		return nil, err
	}

	requests := make([]domain.FriendRequest, 0, len(records))
	for _, record := range records {
		request, err := toDomainRequest(record)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	// Newest first, matching what the mobile request screens display.
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func scanRequests(txn *badger.Txn, match func(diskFriendRequest) bool) ([]diskFriendRequest, error) {
	var records []diskFriendRequest
	prefix := []byte("freq:")
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var record diskFriendRequest
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return nil, err
		}
		if match(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

func fromDomainRequest(request domain.FriendRequest) diskFriendRequest {
	return diskFriendRequest{
		ID:       request.ID.String(),
		Sender:   request.SenderID,
		Receiver: request.ReceiverID,
		Status:   request.Status,
		At:       request.CreatedAt.UnixNano(),
	}
}

func toDomainRequest(record diskFriendRequest) (domain.FriendRequest, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return domain.FriendRequest{
		ID:         id,
		SenderID:   record.Sender,
		ReceiverID: record.Receiver,
		Status:     record.Status,
		CreatedAt:  time.Unix(0, record.At).UTC(),
	}, nil
}
