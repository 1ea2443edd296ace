package services

import (
	"chatline/auth"
	"chatline/errors"
	"chatline/mocks"
	"chatline/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "ComplexPass123!" // Must satisfy the complexity rules
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, gomock.Any()).
			DoAndReturn(func(_, hashed string) (string, error) {
				req.NotEqual(password, hashed)
				return expectedUserID, nil
			}).
			Times(1)

		token, err := svc.Register(username, password)

		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register("alice42", "simplepassword")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when username has forbidden characters", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("alice the great", "ComplexPass123!")
		req.Error(err)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate1", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate1", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "Secret123456!"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetByUsername(username).
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login(username, password)

		req.NoError(err)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
		req.Equal(username, claims.Username)
	})

	t.Run("should return invalid credentials on wrong password", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"

		hashedPassword, _ := auth.HashPassword("CorrectPassword123!")
		storedUser := repositories.User{
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetByUsername(username).
			Return(storedUser, nil).
			Times(1)

		_, err := svc.Login(username, "WrongPassword123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials for unknown user", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("ghost").
			Return(repositories.User{}, errors.ErrUserNotFound).
			Times(1)

		// Same error as a bad password, to prevent user enumeration
		_, err := svc.Login("ghost", "Whatever123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
