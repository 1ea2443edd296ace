package services

import (
	"chatline/domain"
	"chatline/errors"
	"chatline/mocks"
	"chatline/repositories"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type friendServiceMocks struct {
	users       *mocks.MockIUserRepository
	requests    *mocks.MockIFriendRequestRepository
	coordinator *mocks.MockICoordinator
}

func newFriendService(t *testing.T) (IFriendService, friendServiceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := friendServiceMocks{
		users:       mocks.NewMockIUserRepository(ctrl),
		requests:    mocks.NewMockIFriendRequestRepository(ctrl),
		coordinator: mocks.NewMockICoordinator(ctrl),
	}
	return NewFriendService(m.users, m.requests, m.coordinator), m
}

func TestFriendService_SendRequest(t *testing.T) {
	t.Run("should create the request and notify the receiver", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		m.users.EXPECT().GetByID("alice").Return(repositories.User{ID: "alice"}, nil)
		m.users.EXPECT().GetByID("bob").Return(repositories.User{ID: "bob"}, nil)

		created := domain.FriendRequest{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Status: domain.RequestPending}
		m.requests.EXPECT().Create("alice", "bob").Return(created, nil)
		m.coordinator.EXPECT().Notify(gomock.Any(), "bob", gomock.Any())

		request, err := svc.SendRequest(context.Background(), "alice", "bob")
		req.NoError(err)
		req.Equal(created.ID, request.ID)
	})

	t.Run("should reject self requests", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newFriendService(t)

		_, err := svc.SendRequest(context.Background(), "alice", "alice")
		req.ErrorIs(err, errors.ErrSelfRequest)
	})

	t.Run("should reject requests between existing friends", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		m.users.EXPECT().GetByID("alice").Return(repositories.User{ID: "alice", Friends: []string{"bob"}}, nil)
		m.users.EXPECT().GetByID("bob").Return(repositories.User{ID: "bob"}, nil)

		_, err := svc.SendRequest(context.Background(), "alice", "bob")
		req.ErrorIs(err, errors.ErrAlreadyFriends)
	})

	t.Run("should fail when the receiver does not exist", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		m.users.EXPECT().GetByID("alice").Return(repositories.User{ID: "alice"}, nil)
		m.users.EXPECT().GetByID("ghost").Return(repositories.User{}, errors.ErrUserNotFound)

		_, err := svc.SendRequest(context.Background(), "alice", "ghost")
		req.ErrorIs(err, errors.ErrUserNotFound)
	})
}

func TestFriendService_Accept(t *testing.T) {
	t.Run("should add the friendship both ways and notify both users", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		id := uuid.New()
		pending := domain.FriendRequest{ID: id, SenderID: "alice", ReceiverID: "bob", Status: domain.RequestPending}
		accepted := pending
		accepted.Status = domain.RequestAccepted

		m.requests.EXPECT().Get(id).Return(pending, nil)
		m.requests.EXPECT().UpdateStatus(id, domain.RequestAccepted).Return(accepted, nil)
		m.users.EXPECT().AddFriend("alice", "bob").Return(nil)
		m.users.EXPECT().AddFriend("bob", "alice").Return(nil)
		m.coordinator.EXPECT().Notify(gomock.Any(), "alice", gomock.Any())
		m.coordinator.EXPECT().Notify(gomock.Any(), "bob", gomock.Any())

		request, err := svc.Accept(context.Background(), "bob", id)
		req.NoError(err)
		req.Equal(domain.RequestAccepted, request.Status)
	})

	t.Run("only the receiver can accept", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		id := uuid.New()
		pending := domain.FriendRequest{ID: id, SenderID: "alice", ReceiverID: "bob", Status: domain.RequestPending}
		m.requests.EXPECT().Get(id).Return(pending, nil)

		_, err := svc.Accept(context.Background(), "alice", id)
		req.ErrorIs(err, errors.ErrNotAuthorized)
	})

	t.Run("cannot accept a processed request", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		id := uuid.New()
		done := domain.FriendRequest{ID: id, SenderID: "alice", ReceiverID: "bob", Status: domain.RequestAccepted}
		m.requests.EXPECT().Get(id).Return(done, nil)

		_, err := svc.Accept(context.Background(), "bob", id)
		req.ErrorIs(err, errors.ErrRequestProcessed)
	})
}

func TestFriendService_Cancel(t *testing.T) {
	t.Run("only the sender can cancel and the receiver is told", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		id := uuid.New()
		pending := domain.FriendRequest{ID: id, SenderID: "alice", ReceiverID: "bob", Status: domain.RequestPending}

		m.requests.EXPECT().Get(id).Return(pending, nil)
		m.requests.EXPECT().Delete(id).Return(nil)
		m.coordinator.EXPECT().Notify(gomock.Any(), "bob", gomock.Any())

		req.NoError(svc.Cancel(context.Background(), "alice", id))
	})

	t.Run("receiver cannot cancel", func(t *testing.T) {
		req := require.New(t)
		svc, m := newFriendService(t)

		id := uuid.New()
		pending := domain.FriendRequest{ID: id, SenderID: "alice", ReceiverID: "bob", Status: domain.RequestPending}
		m.requests.EXPECT().Get(id).Return(pending, nil)

		req.ErrorIs(svc.Cancel(context.Background(), "bob", id), errors.ErrNotAuthorized)
	})
}

func TestFriendService_Discover(t *testing.T) {
	req := require.New(t)
	svc, m := newFriendService(t)

	m.users.EXPECT().GetByID("alice").Return(repositories.User{ID: "alice", Friends: []string{"bob"}}, nil)
	m.requests.EXPECT().RelatedUserIDs("alice").Return([]string{"carol"}, nil)

	// Excludes self, friends, and pending-request counterparts
	m.users.EXPECT().
		ListAllExcept(map[string]struct{}{"alice": {}, "bob": {}, "carol": {}}).
		Return([]repositories.User{{ID: "dave", Username: "dave"}}, nil)

	candidates, err := svc.Discover("alice")
	req.NoError(err)
	req.Len(candidates, 1)
	req.Equal("dave", candidates[0].Username)
}
