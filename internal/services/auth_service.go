package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/auth"
	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	tokens    *auth.TokenManager
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, tokens *auth.TokenManager) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		tokens:    tokens,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	s.logger.Info("Registering user", "email", req.Email, "role", req.Role)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         models.UserRole(req.Role),
		PasswordHash: string(hash),
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a wrong password, do not reveal which
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
