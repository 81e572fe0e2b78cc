// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService signs users in and issues the bearer tokens guarding the sync
// endpoints.
type AuthService interface {
	// SignInGoogle verifies the Google ID token, upserts the account and
	// issues a bearer token.
	SignInGoogle(ctx context.Context, req models.SignInRequest) (models.AuthSession, error)

	// SignInInternal accepts a pre-verified identity. Only reachable behind
	// the internal deployment credential checked by the handler.
	SignInInternal(ctx context.Context, req models.InternalSignInRequest) (models.AuthSession, error)

	// VerifyInternalKey checks the X-Internal-Auth credential against the
	// configured hash.
	VerifyInternalKey(key string) error

	// ParseToken validates a bearer token string and returns the user id it
	// was issued for.
	ParseToken(tokenString string) (int64, error)

	// GetUser returns the account for the given user id.
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

// SyncService validates and applies sync traffic on behalf of one user per
// call.
type SyncService interface {
	Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error)
	Pull(ctx context.Context, userID int64, since *time.Time) (models.PullResponse, error)
	Full(ctx context.Context, userID int64) (models.PullResponse, error)
	ResolveConflict(ctx context.Context, userID int64, req models.ResolveConflictRequest) error
}
