package services

import (
	"context"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateDoubtRequest = validator.DoubtCreateRequest
type UpdateDoubtRequest = validator.DoubtUpdateRequest
type CreateAnswerRequest = validator.AnswerCreateRequest
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type SuggestAnswerRequest = validator.SuggestAnswerRequest

type DoubtResponse struct {
	*models.Doubt
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
	CanResolve bool `json:"can_resolve"`
}

type DoubtListResponse struct {
	Doubts []*DoubtResponse `json:"doubts"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type AnswerResponse struct {
	*models.Answer
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type SuggestAnswerResponse struct {
	Suggestion string `json:"suggestion"`
	Model      string `json:"model"`
}

// ===== SERVICE INTERFACES =====

// DoubtService drives the doubt lifecycle and answer threads
type DoubtService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateDoubtRequest, authorID string) (*DoubtResponse, error)
	GetByID(ctx context.Context, id string, userID string) (*DoubtResponse, error)
	Update(ctx context.Context, id string, req *UpdateDoubtRequest, userID string) (*DoubtResponse, error)
	Delete(ctx context.Context, id string, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.DoubtFilters, userID string) (*DoubtListResponse, error)
	Search(ctx context.Context, query string, filters repositories.DoubtFilters, userID string) (*DoubtListResponse, error)

	// Lifecycle
	Resolve(ctx context.Context, id string, userID string) (*DoubtResponse, error)

	// Answer thread
	CreateAnswer(ctx context.Context, doubtID string, req *CreateAnswerRequest, userID string) (*AnswerResponse, error)
}

// AuthService handles registration and session issuing
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// SuggestionService proxies AI answer drafting for instructors
type SuggestionService interface {
	SuggestAnswer(ctx context.Context, req *SuggestAnswerRequest, instructorID string) (*SuggestAnswerResponse, error)
}

// ExportService produces spreadsheet exports of the doubt backlog
type ExportService interface {
	ExportDoubts(ctx context.Context, filters repositories.DoubtFilters, userID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Doubt() DoubtService
	Auth() AuthService
	Suggestion() SuggestionService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
