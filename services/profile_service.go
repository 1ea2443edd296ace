package services

import (
	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Avatar uploads are sniffed, never trusted from the Content-Type header.
var allowedAvatarTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

const maxAvatarBytes = 256 * 1024

type IProfileService interface {
	Me(userID string) (domain.User, error)
	UpdateDisplayName(userID, displayName string) (domain.User, error)
	UpdateAvatar(userID string, data []byte) (domain.User, error)
}

type ProfileService struct {
	users repositories.IUserRepository
}

func NewProfileService(users repositories.IUserRepository) IProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Me(userID string) (domain.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	return user.ToDomain(), nil
}

func (s *ProfileService) UpdateDisplayName(userID, displayName string) (domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.User{}, errors.ErrEmptyDisplayName
	}

	user, err := s.users.UpdateDisplayName(userID, displayName)
	if err != nil {
		return domain.User{}, err
	}
	return user.ToDomain(), nil
}

// UpdateAvatar stores the image inline as a data URL. The content type is
// detected from the bytes; an image/svg payload renamed to .png is still
// rejected.
func (s *ProfileService) UpdateAvatar(userID string, data []byte) (domain.User, error) {
	if len(data) == 0 || len(data) > maxAvatarBytes {
		return domain.User{}, errors.ErrUnsupportedAvatar
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedAvatarTypes[detected.String()]; !ok {
		return domain.User{}, errors.ErrUnsupportedAvatar
	}

	avatarURL := "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	user, err := s.users.UpdateAvatar(userID, avatarURL)
	if err != nil {
		return domain.User{}, err
	}
	return user.ToDomain(), nil
}
