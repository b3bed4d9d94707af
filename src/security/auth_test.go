package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	auth := NewAuthService(testSecret)

	token, err := auth.GenerateToken("user-123", time.Hour)
	require.NoError(t, err)

	sub, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestValidateTokenRejects(t *testing.T) {
	auth := NewAuthService(testSecret)

	expired, err := auth.GenerateToken("user-123", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.Error(t, err)

	otherKey, err := NewAuthService("another-secret-another-secret-xx").GenerateToken("user-123", time.Hour)
	require.NoError(t, err)
	_, err = auth.ValidateToken(otherKey)
	assert.Error(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(noSub)
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(noExp)
	assert.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthWithoutSecret(t *testing.T) {
	auth := NewAuthService("")
	_, err := auth.GenerateToken("user-123", time.Hour)
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
	_, err = auth.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
}
