package domain

import "errors"

// Error kinds. Every error returned by the core unwraps to exactly one of
// these; the HTTP layer maps them to status codes.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error is a client-safe error: Message is what the caller sees, Details
// carries per-field problems for validation failures.
type Error struct {
	Kind    error
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap attaches a cause that is logged but never rendered.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Credential and session errors.
var (
	ErrMissingFields      = NewError(ErrValidation, "all fields are required")
	ErrIdentityRequired   = NewError(ErrValidation, "username or email is required")
	ErrAvatarRequired     = NewError(ErrValidation, "avatar file is required")
	ErrCoverImageRequired = NewError(ErrValidation, "cover image file is required")
	ErrUserExists         = NewError(ErrConflict, "user with email or username already exists")
	ErrUserNotFound       = NewError(ErrNotFound, "user does not exist")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid user credentials")
	ErrMissingToken       = NewError(ErrUnauthorized, "unauthorized request")
	ErrTokenInvalid       = NewError(ErrUnauthorized, "invalid token")
	ErrTokenExpired       = NewError(ErrUnauthorized, "token expired")
	ErrTokenRevoked       = NewError(ErrUnauthorized, "refresh token is stale or revoked")
)

// Profile and history errors.
var (
	ErrUsernameRequired = NewError(ErrValidation, "username is missing")
	ErrChannelNotFound  = NewError(ErrNotFound, "channel does not exist")
	ErrVideoNotFound    = NewError(ErrNotFound, "video does not exist")
)
