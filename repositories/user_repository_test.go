package repositories

import (
	"chatline/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CreateUser_And_Lookup(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(id)

	byName, err := repository.GetByUsername("alice")
	req.NoError(err)
	req.Equal(id, byName.ID)
	req.Equal("hashed-secret", byName.PasswordHash)

	byID, err := repository.GetByID(id)
	req.NoError(err)
	req.Equal("alice", byID.Username)
}

func Test_CreateUser_Rejects_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "h1")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "h2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetByID("missing")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetByUsername("missing")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_AddFriend_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	aliceID, err := repository.CreateUser("alice", "h")
	req.NoError(err)
	bobID, err := repository.CreateUser("bob", "h")
	req.NoError(err)

	req.NoError(repository.AddFriend(aliceID, bobID))
	req.NoError(repository.AddFriend(aliceID, bobID))

	alice, err := repository.GetByID(aliceID)
	req.NoError(err)
	req.Equal([]string{bobID}, alice.Friends)
}

func Test_UpdateProfile_Fields(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice", "h")
	req.NoError(err)

	updated, err := repository.UpdateDisplayName(id, "Alice W.")
	req.NoError(err)
	req.Equal("Alice W.", updated.DisplayName)

	updated, err = repository.UpdateAvatar(id, "data:image/png;base64,AAAA")
	req.NoError(err)
	req.Equal("Alice W.", updated.DisplayName)
	req.Equal("data:image/png;base64,AAAA", updated.AvatarURL)
}

func Test_ListAllExcept(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	aliceID, err := repository.CreateUser("alice", "h")
	req.NoError(err)
	bobID, err := repository.CreateUser("bob", "h")
	req.NoError(err)
	_, err = repository.CreateUser("carol", "h")
	req.NoError(err)

	users, err := repository.ListAllExcept(map[string]struct{}{
		aliceID: {},
		bobID:   {},
	})
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("carol", users[0].Username)
}

func Test_ListByIDs_Skips_Dangling_References(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	aliceID, err := repository.CreateUser("alice", "h")
	req.NoError(err)

	users, err := repository.ListByIDs([]string{aliceID, "deleted-user"})
	req.NoError(err)
	req.Len(users, 1)
	req.Equal(aliceID, users[0].ID)
}
