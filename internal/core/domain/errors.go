package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("unable to login")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidUpdates     = errors.New("invalid updates")
	ErrAvatarNotFound     = errors.New("avatar not found")
)

// ValidationError reports a field value the domain refuses to accept.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
