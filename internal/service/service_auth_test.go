package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/mock"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func testAppConfig(t *testing.T) config.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("deploy-key"), bcrypt.MinCost)
	require.NoError(t, err)

	return config.App{
		TokenSignKey:        "test-sign-key",
		TokenIssuer:         "go-note-keeper",
		TokenDuration:       time.Hour,
		GoogleClientID:      "client-id.apps.googleusercontent.com",
		InternalAuthKeyHash: string(hash),
	}
}

func newTestAuthService(t *testing.T, cfg config.App) (AuthService, *mock.MockUserRepository, *mock.MockIDTokenVerifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	verifier := mock.NewMockIDTokenVerifier(ctrl)
	return NewAuthService(users, verifier, cfg, logger.Nop()), users, verifier
}

func TestAuthService_SignInGoogle(t *testing.T) {
	cfg := testAppConfig(t)

	t.Run("issues a token the service itself accepts", func(t *testing.T) {
		svc, users, verifier := newTestAuthService(t, cfg)

		identity := models.GoogleIdentity{ProviderID: "sub-1", Email: "a@b.c"}
		verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(identity, nil)
		users.EXPECT().UpsertByProvider(gomock.Any(), identity).
			Return(models.User{UserID: 42, ProviderID: "sub-1", Email: "a@b.c"}, nil)

		session, err := svc.SignInGoogle(context.Background(), models.SignInRequest{IDToken: "id-token"})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, int64(42), session.User.UserID)

		userID, err := svc.ParseToken(session.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("empty id token", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t, cfg)

		_, err := svc.SignInGoogle(context.Background(), models.SignInRequest{})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("rejected id token maps to invalid data", func(t *testing.T) {
		svc, _, verifier := newTestAuthService(t, cfg)

		verifier.EXPECT().Verify(gomock.Any(), "bad").
			Return(models.GoogleIdentity{}, adapter.ErrInvalidIDToken)

		_, err := svc.SignInGoogle(context.Background(), models.SignInRequest{IDToken: "bad"})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})
}

func TestAuthService_SignInInternal(t *testing.T) {
	cfg := testAppConfig(t)
	svc, users, _ := newTestAuthService(t, cfg)

	identity := models.GoogleIdentity{ProviderID: "sub-2", Email: "c@d.e"}
	users.EXPECT().UpsertByProvider(gomock.Any(), identity).
		Return(models.User{UserID: 7, ProviderID: "sub-2", Email: "c@d.e"}, nil)

	session, err := svc.SignInInternal(context.Background(), models.InternalSignInRequest{Identity: identity})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.SignInInternal(context.Background(), models.InternalSignInRequest{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAuthService_VerifyInternalKey(t *testing.T) {
	cfg := testAppConfig(t)
	svc, _, _ := newTestAuthService(t, cfg)

	assert.NoError(t, svc.VerifyInternalKey("deploy-key"))
	assert.ErrorIs(t, svc.VerifyInternalKey("wrong"), ErrInternalAuthRejected)

	disabledCfg := cfg
	disabledCfg.InternalAuthKeyHash = ""
	disabled, _, _ := newTestAuthService(t, disabledCfg)
	assert.ErrorIs(t, disabled.VerifyInternalKey("deploy-key"), ErrInternalAuthDisabled)
}

func TestAuthService_ParseToken(t *testing.T) {
	cfg := testAppConfig(t)

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t, cfg)
		_, err := svc.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenIsInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredCfg := cfg
		expiredCfg.TokenDuration = -time.Hour

		issuer, users, verifier := newTestAuthService(t, expiredCfg)
		identity := models.GoogleIdentity{ProviderID: "sub-3", Email: "x@y.z"}
		verifier.EXPECT().Verify(gomock.Any(), "tok").Return(identity, nil)
		users.EXPECT().UpsertByProvider(gomock.Any(), identity).
			Return(models.User{UserID: 3}, nil)

		session, err := issuer.SignInGoogle(context.Background(), models.SignInRequest{IDToken: "tok"})
		require.NoError(t, err)

		checker, _, _ := newTestAuthService(t, cfg)
		_, err = checker.ParseToken(session.Token)
		assert.ErrorIs(t, err, ErrTokenIsExpired)
	})
}
