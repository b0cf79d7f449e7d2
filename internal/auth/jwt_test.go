package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/doubt-service/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	user := &models.User{
		ID:   "user-1",
		Name: "Alice Nguyen",
		Role: models.RoleStudent,
	}

	token, err := tm.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Alice Nguyen", claims.Name)
	assert.Equal(t, "STUDENT", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.GenerateToken(&models.User{ID: "user-1", Role: models.RoleInstructor})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.GenerateToken(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseToken_Empty(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.ParseToken("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestParseToken_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
