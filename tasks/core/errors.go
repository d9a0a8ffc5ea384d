package core

import "errors"

// Access errors
var (
	ErrForbidden          = errors.New("access denied")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Tasks errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidReference = errors.New("invalid assignedTo user ID")
	ErrInvalidPayload   = errors.New("invalid payload")
)

// Users errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

var ErrStoreFailure = errors.New("store failure")

// PayloadError is a validation failure reported by the store for a record's content.
type PayloadError struct {
	Field   string
	Message string
}

func NewPayloadError(field, msg string) *PayloadError {
	return &PayloadError{Field: field, Message: msg}
}

func (e *PayloadError) Error() string {
	return e.Message
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}
