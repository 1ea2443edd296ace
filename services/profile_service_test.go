package services

import (
	"chatline/errors"
	"chatline/mocks"
	"chatline/repositories"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestProfileService_UpdateAvatar(t *testing.T) {
	t.Run("should accept a png payload and store it as a data url", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockIUserRepository(ctrl)
		svc := NewProfileService(mockRepo)

		mockRepo.EXPECT().
			UpdateAvatar("alice", gomock.Any()).
			DoAndReturn(func(id, avatarURL string) (repositories.User, error) {
				req.True(strings.HasPrefix(avatarURL, "data:image/png;base64,"))
				return repositories.User{ID: id, AvatarURL: avatarURL}, nil
			})

		user, err := svc.UpdateAvatar("alice", pngHeader)
		req.NoError(err)
		req.NotEmpty(user.AvatarURL)
	})

	t.Run("should reject non-image content regardless of extension claims", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockIUserRepository(ctrl)
		svc := NewProfileService(mockRepo)

		mockRepo.EXPECT().UpdateAvatar(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.UpdateAvatar("alice", []byte("<svg onload=alert(1)></svg>"))
		req.ErrorIs(err, errors.ErrUnsupportedAvatar)
	})

	t.Run("should reject empty and oversized payloads", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockIUserRepository(ctrl)
		svc := NewProfileService(mockRepo)

		_, err := svc.UpdateAvatar("alice", nil)
		req.ErrorIs(err, errors.ErrUnsupportedAvatar)

		huge := make([]byte, maxAvatarBytes+1)
		copy(huge, pngHeader)
		_, err = svc.UpdateAvatar("alice", huge)
		req.ErrorIs(err, errors.ErrUnsupportedAvatar)
	})
}

func TestProfileService_UpdateDisplayName(t *testing.T) {
	t.Run("should trim and persist the name", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockIUserRepository(ctrl)
		svc := NewProfileService(mockRepo)

		mockRepo.EXPECT().
			UpdateDisplayName("alice", "Alice W.").
			Return(repositories.User{ID: "alice", DisplayName: "Alice W."}, nil)

		user, err := svc.UpdateDisplayName("alice", "  Alice W.  ")
		req.NoError(err)
		req.Equal("Alice W.", user.DisplayName)
	})

	t.Run("should reject blank names", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockIUserRepository(ctrl)
		svc := NewProfileService(mockRepo)

		_, err := svc.UpdateDisplayName("alice", "   ")
		req.ErrorIs(err, errors.ErrEmptyDisplayName)
	})
}
