package service

import "errors"

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollInactive       = errors.New("poll is no longer active")
	ErrAlreadyVoted       = errors.New("voter has already voted in this poll")
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
