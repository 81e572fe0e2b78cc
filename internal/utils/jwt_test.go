package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer  = "go-note-keeper"
	testSignKey = "test-sign-key"
)

func TestGenerateJWTToken(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		token, err := GenerateJWTToken(testIssuer, 42, time.Hour, testSignKey)
		require.NoError(t, err)
		require.NotEmpty(t, token.SignedString)
		assert.Equal(t, int64(42), token.UserID)

		parsed, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
		require.NoError(t, err)
		assert.Equal(t, int64(42), parsed.UserID)
	})

	t.Run("missing params", func(t *testing.T) {
		_, err := GenerateJWTToken("", 1, time.Hour, testSignKey)
		assert.Error(t, err)

		_, err = GenerateJWTToken(testIssuer, 1, 0, testSignKey)
		assert.Error(t, err)

		_, err = GenerateJWTToken(testIssuer, 1, time.Hour, "")
		assert.Error(t, err)
	})
}

func TestValidateAndParseJWTToken(t *testing.T) {
	t.Run("wrong sign key", func(t *testing.T) {
		token, err := GenerateJWTToken(testIssuer, 1, time.Hour, testSignKey)
		require.NoError(t, err)

		_, err = ValidateAndParseJWTToken(token.SignedString, "another-key", testIssuer)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := GenerateJWTToken("someone-else", 1, time.Hour, testSignKey)
		require.NoError(t, err)

		_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateJWTToken(testIssuer, 1, -time.Minute, testSignKey)
		require.NoError(t, err)

		_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken("not-a-jwt", testSignKey, testIssuer)
		assert.Error(t, err)
	})
}
