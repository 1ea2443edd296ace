package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrEmptyMessage       = fmt.Errorf("message content is empty")
	ErrEmptyDisplayName   = fmt.Errorf("display name is empty")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrRequestNotFound    = fmt.Errorf("friend request not found")
	ErrRequestExists      = fmt.Errorf("friend request already exists")
	ErrRequestProcessed   = fmt.Errorf("friend request already processed")
	ErrAlreadyFriends     = fmt.Errorf("users are already friends")
	ErrSelfRequest        = fmt.Errorf("cannot send a friend request to yourself")
	ErrNotAuthorized      = fmt.Errorf("not authorized")
	ErrSessionBound       = fmt.Errorf("session already bound to a user")
	ErrSessionClosed      = fmt.Errorf("session closed")
	ErrUnsupportedAvatar  = fmt.Errorf("unsupported avatar content type")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates domain errors into HTTP status codes at the REST boundary.
// Unknown errors are treated as internal failures so that storage details never leak to clients.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrEmptyDisplayName),
		errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrRequestExists),
		errors.Is(err, ErrRequestProcessed),
		errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrSelfRequest),
		errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrUnsupportedAvatar):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrRequestNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
