// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

type authService struct {
	users    store.UserRepository
	verifier adapter.IDTokenVerifier
	cfg      config.App
	logger   *logger.Logger
}

func NewAuthService(users store.UserRepository, verifier adapter.IDTokenVerifier, cfg config.App, logger *logger.Logger) AuthService {
	logger.Debug().Msg("AuthService created")
	return &authService{
		users:    users,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// SignInGoogle implements [AuthService].
func (s *authService) SignInGoogle(ctx context.Context, req models.SignInRequest) (models.AuthSession, error) {
	if req.IDToken == "" {
		return models.AuthSession{}, fmt.Errorf("%w: idToken is required", ErrInvalidDataProvided)
	}

	identity, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		s.logger.Err(err).Str("func", "*authService.SignInGoogle").Msg("id token verification failed")
		if errors.Is(err, adapter.ErrInvalidIDToken) {
			return models.AuthSession{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
		return models.AuthSession{}, err
	}

	return s.establishSession(ctx, identity)
}

// SignInInternal implements [AuthService]. The identity is trusted as given;
// the handler has already checked the internal credential.
func (s *authService) SignInInternal(ctx context.Context, req models.InternalSignInRequest) (models.AuthSession, error) {
	if req.Identity.ProviderID == "" || req.Identity.Email == "" {
		return models.AuthSession{}, fmt.Errorf("%w: identity providerId and email are required", ErrInvalidDataProvided)
	}

	return s.establishSession(ctx, req.Identity)
}

func (s *authService) establishSession(ctx context.Context, identity models.GoogleIdentity) (models.AuthSession, error) {
	user, err := s.users.UpsertByProvider(ctx, identity)
	if err != nil {
		s.logger.Err(err).Str("func", "*authService.establishSession").Msg("user upsert failed")
		return models.AuthSession{}, err
	}

	token, err := utils.GenerateJWTToken(s.cfg.TokenIssuer, user.UserID, s.cfg.TokenDuration, s.cfg.TokenSignKey)
	if err != nil {
		s.logger.Err(err).Str("func", "*authService.establishSession").Msg("token generation failed")
		return models.AuthSession{}, err
	}

	return models.AuthSession{
		Token: token.SignedString,
		User:  user,
	}, nil
}

// VerifyInternalKey implements [AuthService].
func (s *authService) VerifyInternalKey(key string) error {
	if s.cfg.InternalAuthKeyHash == "" {
		return ErrInternalAuthDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.InternalAuthKeyHash), []byte(key)); err != nil {
		return ErrInternalAuthRejected
	}

	return nil
}

// ParseToken implements [AuthService].
func (s *authService) ParseToken(tokenString string) (int64, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, s.cfg.TokenSignKey, s.cfg.TokenIssuer)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenIsExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrTokenIsInvalid, err)
	}

	return token.UserID, nil
}

// GetUser implements [AuthService].
func (s *authService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}
