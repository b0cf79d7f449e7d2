package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/doubt-service/internal/auth"
	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

func newTestAuthService(t *testing.T) (AuthService, *memoryRepository, *auth.TokenManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMemoryRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	return NewAuthService(repo, nil, logger, validator.New(), tokens), repo, tokens
}

func TestAuthService_Register(t *testing.T) {
	service, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	resp, err := service.Register(ctx, &RegisterRequest{
		Name:     "Alice Nguyen",
		Email:    "Alice@Example.com",
		Password: "s3cretpass",
		Role:     "STUDENT",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)

	// Email is normalized to lower case
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.NotEmpty(t, resp.User.ID)

	// The hash never equals the raw password
	assert.NotEqual(t, "s3cretpass", resp.User.PasswordHash)

	// Issued token parses back to the same user
	claims, err := tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "STUDENT", claims.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	ctx := context.Background()

	req := &RegisterRequest{
		Name:     "Alice Nguyen",
		Email:    "alice@example.com",
		Password: "s3cretpass",
		Role:     "STUDENT",
	}

	_, err := service.Register(ctx, req)
	require.NoError(t, err)

	_, err = service.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	service, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, &RegisterRequest{
		Name:     "Prof. Minh",
		Email:    "minh@example.com",
		Password: "instructor-pass",
		Role:     "INSTRUCTOR",
	})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		resp, err := service.Login(ctx, &LoginRequest{Email: "minh@example.com", Password: "instructor-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleInstructor, resp.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Email: "minh@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email maps to the same error", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Me(t *testing.T) {
	service, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	repo.addUser("user-1", "Alice Nguyen", models.RoleStudent)

	t.Run("existing user", func(t *testing.T) {
		user, err := service.Me(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice Nguyen", user.Name)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := service.Me(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := service.Me(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
