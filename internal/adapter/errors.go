package adapter

import "errors"

var (
	// ErrUnauthorized is returned on HTTP 401: the bearer token is missing,
	// expired or revoked. The engine reacts by clearing its session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned on HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest is returned on HTTP 400.
	ErrBadRequest = errors.New("bad request")

	// ErrServerUnavailable is returned when the request never reached the
	// server or the server answered with a 5xx status.
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrInvalidIDToken is returned by the verifier when the provider
	// rejects the ID token or the audience does not match.
	ErrInvalidIDToken = errors.New("invalid id token")
)
