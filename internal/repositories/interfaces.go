package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type DoubtFilters struct {
	Status    *models.DoubtStatus `json:"status"`
	AuthorID  *string             `json:"author_id"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "updated_at", "title", "status"
	SortOrder string              `json:"sort_order"` // "asc", "desc"

	// ViewerID restricts results to doubts the viewer may see: their
	// own plus resolved ones. Leave nil for instructors.
	ViewerID *string `json:"-"`
}

type SuggestionLogFilters struct {
	InstructorID *string    `json:"instructor_id"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// DoubtRepository handles doubt persistence
type DoubtRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error)
	Update(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters DoubtFilters) ([]*models.Doubt, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters DoubtFilters) ([]*models.Doubt, int64, error)

	// Lifecycle
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.DoubtStatus) error

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.DoubtStatus) (int64, error)
}

// AnswerRepository handles answer persistence. Answers are append-only.
type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Answer, error)
	ListByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) ([]*models.Answer, error)
	CountByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) (int64, error)
}

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error)
}

// SuggestionLogRepository handles the audit trail of AI suggestion calls
type SuggestionLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.SuggestionLog) error
	List(ctx context.Context, tx *gorm.DB, filters SuggestionLogFilters) ([]*models.SuggestionLog, int64, error)
}
