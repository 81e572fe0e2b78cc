package service

import "errors"

var (
	// ErrInvalidDataProvided is returned when a request fails validation
	// before reaching the store. Handlers map it to HTTP 400.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrTokenIsInvalid is returned when a bearer token fails signature or
	// claim validation.
	ErrTokenIsInvalid = errors.New("token is invalid")

	// ErrTokenIsExpired is returned when a bearer token is past its expiry.
	ErrTokenIsExpired = errors.New("token is expired")

	// ErrInternalAuthDisabled is returned by the internal sign-in path when
	// no internal credential hash is configured.
	ErrInternalAuthDisabled = errors.New("internal auth is disabled")

	// ErrInternalAuthRejected is returned when the presented internal
	// credential does not match the configured hash.
	ErrInternalAuthRejected = errors.New("internal auth rejected")
)
