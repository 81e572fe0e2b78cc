// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// ServerAdapter is the client's view of the sync server. Implementations
// carry the bearer token between SetToken and the authenticated calls.
type ServerAdapter interface {
	// SignInGoogle exchanges a Google ID token for a bearer token and the
	// signed-in user. The adapter stores the token for subsequent calls.
	SignInGoogle(ctx context.Context, req models.SignInRequest) (models.AuthSession, error)

	// Me returns the account behind the current bearer token.
	Me(ctx context.Context) (models.User, error)

	// Push uploads a batch of local changes.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull downloads changes since the given cursor; nil means everything.
	Pull(ctx context.Context, since *time.Time) (models.PullResponse, error)

	// Full downloads the complete live state, tombstones excluded.
	Full(ctx context.Context) (models.PullResponse, error)

	// ResolveConflict marks a server-side conflict row as resolved.
	ResolveConflict(ctx context.Context, req models.ResolveConflictRequest) error

	// SetToken installs (or, with an empty string, clears) the bearer token.
	SetToken(token string)

	// Token returns the currently installed bearer token.
	Token() string
}

// IDTokenVerifier validates an OAuth ID token and returns the identity it
// asserts. The server depends on this boundary so tests and the internal
// sign-in path can bypass the real provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (models.GoogleIdentity, error)
}
