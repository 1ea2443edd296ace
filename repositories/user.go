//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword string) (string, error)
	GetByUsername(username string) (User, error)
	GetByID(id string) (User, error)
	UpdateDisplayName(id, displayName string) (User, error)
	UpdateAvatar(id, avatarURL string) (User, error)
	AddFriend(id, friendID string) error
	ListByIDs(ids []string) ([]User, error)
	ListAllExcept(excluded map[string]struct{}) ([]User, error)
}

// User is the repository-layer representation of an account. It carries
// the password hash, which must never cross into handler responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url"`
	PasswordHash string    `json:"password_hash"`
	Friends      []string  `json:"friends"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) ToDomain() domain.User {
	return domain.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Friends:     u.Friends,
		CreatedAt:   u.CreatedAt,
	}
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// Key layout:
//
//	user:{id}          -> JSON record
//	username:{name}    -> id (uniqueness index, checked inside the txn)
func userKey(id string) []byte       { return []byte("user:" + id) }
func usernameKey(name string) []byte { return []byte("username:" + name) }

// CreateUser persists a new account and returns the generated ID.
// Username uniqueness is enforced by checking the index key inside the
// same transaction that writes it.
func (u UserRepository) CreateUser(username, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	record := User{
		ID:           newID,
		Username:     username,
		PasswordHash: hashedPassword,
		Friends:      []string{},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(usernameKey(username), []byte(newID)); err != nil {
			return err
		}
		return txn.Set(userKey(newID), data)
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

func (u UserRepository) GetByUsername(username string) (User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return User{}, err
	}
	return u.GetByID(id)
}

func (u UserRepository) GetByID(id string) (User, error) {
	var record User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	return record, err
}

// mutate applies fn to the stored record and rewrites it in one
// transaction, so concurrent field updates cannot clobber each other.
func (u UserRepository) mutate(id string, fn func(*User)) (User, error) {
	var record User
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		fn(&record)
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), data)
	})
	return record, err
}

func (u UserRepository) UpdateDisplayName(id, displayName string) (User, error) {
	return u.mutate(id, func(r *User) { r.DisplayName = displayName })
}

func (u UserRepository) UpdateAvatar(id, avatarURL string) (User, error) {
	return u.mutate(id, func(r *User) { r.AvatarURL = avatarURL })
}

// AddFriend adds friendID to the user's friend set if not already present.
func (u UserRepository) AddFriend(id, friendID string) error {
	_, err := u.mutate(id, func(r *User) {
		for _, f := range r.Friends {
			if f == friendID {
				return
			}
		}
		r.Friends = append(r.Friends, friendID)
	})
	return err
}

func (u UserRepository) ListByIDs(ids []string) ([]User, error) {
	users := make([]User, 0, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(userKey(id))
			if err != nil {
				// A dangling friend reference is not fatal for a listing.
				continue
			}
			var record User
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			users = append(users, record)
		}
		return nil
	})
	return users, err
}

// ListAllExcept scans every account, skipping the excluded IDs.
// Backs the discover endpoint; fine at this scale, a real deployment
// would page this.
func (u UserRepository) ListAllExcept(excluded map[string]struct{}) ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte("user:")
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if _, skip := excluded[record.ID]; skip {
				continue
			}
			users = append(users, record)
		}
		return nil
	})
	return users, err
}
