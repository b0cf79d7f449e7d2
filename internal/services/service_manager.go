package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/auth"
	"github.com/SAP-F-2025/doubt-service/internal/cache"
	"github.com/SAP-F-2025/doubt-service/internal/events"
	"github.com/SAP-F-2025/doubt-service/internal/policy"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Policy     policy.Policy
	Suggestion SuggestionConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db           *gorm.DB
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	tokens       *auth.TokenManager
	publisher    events.EventPublisher
	cacheManager *cache.CacheManager
	config       ServiceManagerConfig

	// Service instances
	doubtService      DoubtService
	authService       AuthService
	suggestionService SuggestionService
	exportService     ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, tokens *auth.TokenManager, publisher events.EventPublisher, cacheManager *cache.CacheManager, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:           db,
		repo:         repo,
		logger:       logger,
		validator:    validator,
		tokens:       tokens,
		publisher:    publisher,
		cacheManager: cacheManager,
		config:       config,
	}
}

// Initialize builds all service instances
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}

	sm.doubtService = NewDoubtService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Policy, sm.publisher, sm.cacheManager)
	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.tokens)
	sm.suggestionService = NewSuggestionService(sm.repo, sm.logger, sm.validator, sm.config.Suggestion)
	sm.exportService = NewExportService(sm.repo, sm.logger, sm.config.Policy)

	sm.initialized = true
	sm.logger.Info("Service manager initialized")

	return nil
}

func (sm *serviceManager) Doubt() DoubtService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.doubtService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.authService
}

func (sm *serviceManager) Suggestion() SuggestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.suggestionService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.exportService
}

// HealthCheck verifies the repository connections
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

// Shutdown releases the event publisher; repository connections are
// closed by the repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
			return err
		}
	}

	sm.logger.Info("Service manager shut down")
	return nil
}
