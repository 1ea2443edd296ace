package repositories

import (
	"chatline/domain"
	"chatline/errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Create_Request_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	request, err := repository.Create("alice", "bob")
	req.NoError(err)
	req.Equal(domain.RequestPending, request.Status)

	fetched, err := repository.Get(request.ID)
	req.NoError(err)
	req.Equal(request.ID, fetched.ID)
	req.Equal("alice", fetched.SenderID)
	req.Equal("bob", fetched.ReceiverID)
}

func Test_Create_Request_Conflicts_Both_Directions(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	_, err := repository.Create("alice", "bob")
	req.NoError(err)

	// Same direction
	_, err = repository.Create("alice", "bob")
	req.ErrorIs(err, errors.ErrRequestExists)

	// Reverse direction
	_, err = repository.Create("bob", "alice")
	req.ErrorIs(err, errors.ErrRequestExists)
}

func Test_Rejected_Request_Can_Be_Resent(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	request, err := repository.Create("alice", "bob")
	req.NoError(err)

	_, err = repository.UpdateStatus(request.ID, domain.RequestRejected)
	req.NoError(err)

	_, err = repository.Create("alice", "bob")
	req.NoError(err)
}

func Test_Pending_Lists(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	first, err := repository.Create("alice", "bob")
	req.NoError(err)
	_, err = repository.Create("carol", "bob")
	req.NoError(err)

	incoming, err := repository.IncomingPending("bob")
	req.NoError(err)
	req.Len(incoming, 2)

	outgoing, err := repository.OutgoingPending("alice")
	req.NoError(err)
	req.Len(outgoing, 1)
	req.Equal(first.ID, outgoing[0].ID)

	// Accepted requests drop off the pending lists
	_, err = repository.UpdateStatus(first.ID, domain.RequestAccepted)
	req.NoError(err)

	incoming, err = repository.IncomingPending("bob")
	req.NoError(err)
	req.Len(incoming, 1)
	req.Equal("carol", incoming[0].SenderID)
}

func Test_Delete_Request(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	request, err := repository.Create("alice", "bob")
	req.NoError(err)

	req.NoError(repository.Delete(request.ID))
	_, err = repository.Get(request.ID)
	req.ErrorIs(err, errors.ErrRequestNotFound)

	req.ErrorIs(repository.Delete(uuid.New()), errors.ErrRequestNotFound)
}

func Test_RelatedUserIDs(t *testing.T) {
	req := require.New(t)
	repository := NewFriendRequestRepository(openTestDB(t))

	_, err := repository.Create("alice", "bob")
	req.NoError(err)
	rejected, err := repository.Create("carol", "alice")
	req.NoError(err)
	_, err = repository.UpdateStatus(rejected.ID, domain.RequestRejected)
	req.NoError(err)

	related, err := repository.RelatedUserIDs("alice")
	req.NoError(err)

	// Rejected requests no longer tie users together
	req.Equal([]string{"bob"}, related)
}
