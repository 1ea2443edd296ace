package services

import (
	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
	"chatline/errors"
	"chatline/repositories"
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IFriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (domain.FriendRequest, error)
	Accept(ctx context.Context, userID string, requestID uuid.UUID) (domain.FriendRequest, error)
	Reject(ctx context.Context, userID string, requestID uuid.UUID) (domain.FriendRequest, error)
	Cancel(ctx context.Context, userID string, requestID uuid.UUID) error
	Friends(userID string) ([]domain.PublicUser, error)
	Incoming(userID string) ([]domain.FriendRequest, error)
	Outgoing(userID string) ([]domain.FriendRequest, error)
	Discover(userID string) ([]domain.PublicUser, error)
}

// FriendService owns the request lifecycle. State transitions are guarded
// by role: only the receiver accepts or rejects, only the sender cancels.
type FriendService struct {
	users       repositories.IUserRepository
	requests    repositories.IFriendRequestRepository
	coordinator contract.ICoordinator
}

func NewFriendService(users repositories.IUserRepository,
	requests repositories.IFriendRequestRepository,
	coordinator contract.ICoordinator) IFriendService {
	return &FriendService{users: users, requests: requests, coordinator: coordinator}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID string) (domain.FriendRequest, error) {
	if senderID == receiverID {
		return domain.FriendRequest{}, errors.ErrSelfRequest
	}

	sender, err := s.users.GetByID(senderID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if _, err := s.users.GetByID(receiverID); err != nil {
		return domain.FriendRequest{}, err
	}
	if sender.ToDomain().IsFriendOf(receiverID) {
		return domain.FriendRequest{}, errors.ErrAlreadyFriends
	}

	request, err := s.requests.Create(senderID, receiverID)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	s.coordinator.Notify(ctx, receiverID, event.FriendRequestReceived{
		RequestID: request.ID,
		From:      senderID,
	})
	return request, nil
}

func (s *FriendService) Accept(ctx context.Context, userID string, requestID uuid.UUID) (domain.FriendRequest, error) {
	request, err := s.pendingFor(requestID, userID, false)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	updated, err := s.requests.UpdateStatus(requestID, domain.RequestAccepted)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	// The friendship is symmetric; both sides get the edge.
	if err := s.users.AddFriend(request.SenderID, request.ReceiverID); err != nil {
		return domain.FriendRequest{}, err
	}
	if err := s.users.AddFriend(request.ReceiverID, request.SenderID); err != nil {
		return domain.FriendRequest{}, err
	}

	accepted := event.FriendRequestAccepted{UserA: request.SenderID, UserB: request.ReceiverID}
	s.coordinator.Notify(ctx, request.SenderID, accepted)
	s.coordinator.Notify(ctx, request.ReceiverID, accepted)
	return updated, nil
}

func (s *FriendService) Reject(ctx context.Context, userID string, requestID uuid.UUID) (domain.FriendRequest, error) {
	if _, err := s.pendingFor(requestID, userID, false); err != nil {
		return domain.FriendRequest{}, err
	}
	return s.requests.UpdateStatus(requestID, domain.RequestRejected)
}

// Cancel removes a pending request the caller sent. The receiver is told
// to drop it from their inbox if online.
func (s *FriendService) Cancel(ctx context.Context, userID string, requestID uuid.UUID) error {
	request, err := s.pendingFor(requestID, userID, true)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(requestID); err != nil {
		return err
	}

	s.coordinator.Notify(ctx, request.ReceiverID, event.FriendRequestCanceled{From: userID})
	return nil
}

func (s *FriendService) Friends(userID string) ([]domain.PublicUser, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	friends, err := s.users.ListByIDs(user.Friends)
	if err != nil {
		return nil, err
	}
	return lo.Map(friends, func(u repositories.User, _ int) domain.PublicUser {
		return u.ToDomain().Public()
	}), nil
}

func (s *FriendService) Incoming(userID string) ([]domain.FriendRequest, error) {
	return s.requests.IncomingPending(userID)
}

func (s *FriendService) Outgoing(userID string) ([]domain.FriendRequest, error) {
	return s.requests.OutgoingPending(userID)
}

// Discover lists accounts the user could befriend: everyone except
// themselves, their friends, and anyone tied to them by a pending request.
func (s *FriendService) Discover(userID string) ([]domain.PublicUser, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	related, err := s.requests.RelatedUserIDs(userID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(user.Friends)+len(related)+1)
	excluded[userID] = struct{}{}
	for _, id := range user.Friends {
		excluded[id] = struct{}{}
	}
	for _, id := range related {
		excluded[id] = struct{}{}
	}

	candidates, err := s.users.ListAllExcept(excluded)
	if err != nil {
		return nil, err
	}
	return lo.Map(candidates, func(u repositories.User, _ int) domain.PublicUser {
		return u.ToDomain().Public()
	}), nil
}

// pendingFor loads the request and checks the caller holds the required
// role (sender when asSender, receiver otherwise) and that it is still
// pending.
func (s *FriendService) pendingFor(requestID uuid.UUID, userID string, asSender bool) (domain.FriendRequest, error) {
	request, err := s.requests.Get(requestID)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	owner := request.ReceiverID
	if asSender {
		owner = request.SenderID
	}
	if owner != userID {
		return domain.FriendRequest{}, errors.ErrNotAuthorized
	}
	if request.Status != domain.RequestPending {
		return domain.FriendRequest{}, errors.ErrRequestProcessed
	}
	return request, nil
}
