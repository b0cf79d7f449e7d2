package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/cache"
	"github.com/SAP-F-2025/doubt-service/internal/events"
	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/policy"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/validator"
)

// DoubtEventsTopic is the Kafka topic doubt lifecycle events go to
const DoubtEventsTopic = "doubt-events"

type doubtService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    policy.Policy
	publisher events.EventPublisher
	cache     *cache.CacheManager
}

func NewDoubtService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, pol policy.Policy, publisher events.EventPublisher, cacheManager *cache.CacheManager) DoubtService {
	return &doubtService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		policy:    pol,
		publisher: publisher,
		cache:     cacheManager,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *doubtService) Create(ctx context.Context, req *CreateDoubtRequest, authorID string) (*DoubtResponse, error) {
	s.logger.Info("Creating doubt", "author_id", authorID, "title", req.Title)

	if errs := s.validator.ValidateDoubtCreate(req); len(errs) > 0 {
		return nil, errs
	}

	identity, err := s.resolveIdentity(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if effect := s.policy.CanCreateDoubt(identity); !effect.Allowed() {
		return nil, NewPermissionError(authorID, "", "doubt", "create", "only students may post doubts")
	}

	doubt := &models.Doubt{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Status:   models.StatusOpen,
		AuthorID: authorID,
	}

	if err := s.repo.Doubt().Create(ctx, nil, doubt); err != nil {
		return nil, fmt.Errorf("failed to create doubt: %w", err)
	}

	s.invalidateCache(ctx, doubt.ID)
	s.publishEvent(ctx, events.EventDoubtCreated, events.DoubtCreatedEvent{
		DoubtID:  doubt.ID,
		Title:    doubt.Title,
		AuthorID: doubt.AuthorID,
	})

	s.logger.Info("Doubt created successfully", "doubt_id", doubt.ID)

	created, err := s.repo.Doubt().GetByIDWithAnswers(ctx, nil, doubt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload doubt: %w", err)
	}

	return s.buildDoubtResponse(created, identity), nil
}

func (s *doubtService) GetByID(ctx context.Context, id string, userID string) (*DoubtResponse, error) {
	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	doubt, err := s.getDoubtCached(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to get doubt: %w", err)
	}

	// Visibility denial is indistinguishable from a missing record
	if effect := s.policy.CanViewDoubt(identity, doubt); !effect.Allowed() {
		return nil, ErrDoubtNotFound
	}

	return s.buildDoubtResponse(doubt, identity), nil
}

func (s *doubtService) Update(ctx context.Context, id string, req *UpdateDoubtRequest, userID string) (*DoubtResponse, error) {
	s.logger.Info("Updating doubt", "doubt_id", id, "user_id", userID)

	if errs := s.validator.ValidateDoubtUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	doubt, err := s.repo.Doubt().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to get doubt: %w", err)
	}

	if effect := s.policy.CanEditDoubt(identity, doubt); !effect.Allowed() {
		return nil, s.denyError(effect, userID, id, "update")
	}

	if req.Title != nil {
		doubt.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		doubt.Content = strings.TrimSpace(*req.Content)
	}
	doubt.UpdatedAt = time.Now()

	if err := s.repo.Doubt().Update(ctx, nil, doubt); err != nil {
		return nil, fmt.Errorf("failed to update doubt: %w", err)
	}

	s.invalidateCache(ctx, id)
	s.logger.Info("Doubt updated successfully", "doubt_id", id)

	updated, err := s.repo.Doubt().GetByIDWithAnswers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload doubt: %w", err)
	}

	return s.buildDoubtResponse(updated, identity), nil
}

func (s *doubtService) Delete(ctx context.Context, id string, userID string) error {
	s.logger.Info("Deleting doubt", "doubt_id", id, "user_id", userID)

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return err
	}

	doubt, err := s.repo.Doubt().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDoubtNotFound
		}
		return fmt.Errorf("failed to get doubt: %w", err)
	}

	if effect := s.policy.CanDeleteDoubt(identity, doubt); !effect.Allowed() {
		return s.denyError(effect, userID, id, "delete")
	}

	// Answers are removed with the doubt via the FK cascade
	if err := s.repo.Doubt().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDoubtNotFound
		}
		return fmt.Errorf("failed to delete doubt: %w", err)
	}

	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.EventDoubtDeleted, events.DoubtDeletedEvent{
		DoubtID:   id,
		DeletedBy: userID,
	})

	s.logger.Info("Doubt deleted successfully", "doubt_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *doubtService) List(ctx context.Context, filters repositories.DoubtFilters, userID string) (*DoubtListResponse, error) {
	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Students only see their own doubts in the listing; the resolved
	// knowledge base is reached through search.
	if identity.IsStudent() {
		filters.AuthorID = &identity.ID
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}

	doubts, total, err := s.repo.Doubt().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list doubts: %w", err)
	}

	return s.buildDoubtListResponse(doubts, total, filters.Limit, filters.Offset, identity), nil
}

func (s *doubtService) Search(ctx context.Context, query string, filters repositories.DoubtFilters, userID string) (*DoubtListResponse, error) {
	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Students search their own doubts plus the resolved knowledge base
	if identity.IsStudent() {
		filters.ViewerID = &identity.ID
	}

	query = strings.TrimSpace(query)

	result, err := s.searchCached(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search doubts: %w", err)
	}

	return s.buildDoubtListResponse(result.Doubts, result.Total, filters.Limit, filters.Offset, identity), nil
}

// searchResult is the cacheable shape of one search page.
type searchResult struct {
	Doubts []*models.Doubt `json:"doubts"`
	Total  int64           `json:"total"`
}

// searchCached reads a search page through the cache-aside helper.
// The key carries the viewer scope so a student's view of the index
// never leaks into another user's page.
func (s *doubtService) searchCached(ctx context.Context, query string, filters repositories.DoubtFilters) (*searchResult, error) {
	fetch := func() (interface{}, error) {
		doubts, total, err := s.repo.Doubt().Search(ctx, nil, query, filters)
		if err != nil {
			return nil, err
		}
		for _, doubt := range doubts {
			projectAuthorNames(doubt)
		}
		return &searchResult{Doubts: doubts, Total: total}, nil
	}

	if s.cache == nil {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*searchResult), nil
	}

	var result searchResult
	err := s.cache.Search.CacheOrExecute(ctx, searchCacheKey(query, filters), &result, cache.SearchCacheConfig.TTL, fetch)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func searchCacheKey(query string, filters repositories.DoubtFilters) string {
	viewer := "all"
	if filters.ViewerID != nil {
		viewer = *filters.ViewerID
	}
	status := "any"
	if filters.Status != nil {
		status = string(*filters.Status)
	}
	dates := ""
	if filters.DateFrom != nil {
		dates += ":from:" + filters.DateFrom.UTC().Format(time.RFC3339)
	}
	if filters.DateTo != nil {
		dates += ":to:" + filters.DateTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("q:%s:viewer:%s:status:%s:limit:%d:offset:%d:sort:%s:%s%s",
		query, viewer, status, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, dates)
}

// ===== LIFECYCLE =====

func (s *doubtService) Resolve(ctx context.Context, id string, userID string) (*DoubtResponse, error) {
	s.logger.Info("Resolving doubt", "doubt_id", id, "user_id", userID)

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	var authorID string
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		doubt, err := txRepo.Doubt().GetByID(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDoubtNotFound
			}
			return fmt.Errorf("failed to get doubt: %w", err)
		}
		authorID = doubt.AuthorID

		if effect := s.policy.CanResolveDoubt(identity, doubt); !effect.Allowed() {
			return s.denyError(effect, userID, id, "resolve")
		}

		// UpdateStatus only transitions OPEN rows. The doubt existed a
		// moment ago, so zero rows affected means a racing resolve won.
		if err := txRepo.Doubt().UpdateStatus(ctx, nil, id, models.StatusResolved); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDoubtResolved
			}
			return fmt.Errorf("failed to resolve doubt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	s.publishEvent(ctx, events.EventDoubtResolved, events.DoubtResolvedEvent{
		DoubtID:    id,
		ResolvedBy: userID,
		AuthorID:   authorID,
	})

	s.logger.Info("Doubt resolved successfully", "doubt_id", id)

	resolved, err := s.repo.Doubt().GetByIDWithAnswers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload doubt: %w", err)
	}

	return s.buildDoubtResponse(resolved, identity), nil
}

// ===== ANSWER THREAD =====

func (s *doubtService) CreateAnswer(ctx context.Context, doubtID string, req *CreateAnswerRequest, userID string) (*AnswerResponse, error) {
	s.logger.Info("Creating answer", "doubt_id", doubtID, "user_id", userID)

	if errs := s.validator.ValidateAnswerCreate(req); len(errs) > 0 {
		return nil, errs
	}

	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	doubt, err := s.repo.Doubt().GetByID(ctx, nil, doubtID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to get doubt: %w", err)
	}

	if effect := s.policy.CanCreateAnswer(identity, doubt); !effect.Allowed() {
		return nil, NewPermissionError(userID, doubtID, "answer", "create", "only instructors may post answers")
	}

	answer := &models.Answer{
		Content:  strings.TrimSpace(req.Content),
		DoubtID:  doubtID,
		AuthorID: userID,
	}

	if err := s.repo.Answer().Create(ctx, nil, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	s.invalidateCache(ctx, doubtID)
	s.publishEvent(ctx, events.EventDoubtAnswered, events.DoubtAnsweredEvent{
		DoubtID:      doubtID,
		AnswerID:     answer.ID,
		InstructorID: userID,
		AuthorID:     doubt.AuthorID,
	})

	s.logger.Info("Answer created successfully", "answer_id", answer.ID, "doubt_id", doubtID)

	created, err := s.repo.Answer().GetByID(ctx, nil, answer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload answer: %w", err)
	}
	created.AuthorName = created.Author.Name

	return &AnswerResponse{Answer: created}, nil
}

// ===== HELPERS =====

// resolveIdentity loads the acting user and builds the policy identity.
// Lookups go through the user cache: name, email and role never change
// after registration, so a stale entry cannot mislead the policy.
func (s *doubtService) resolveIdentity(ctx context.Context, userID string) (policy.Identity, error) {
	if userID == "" {
		return policy.Identity{}, ErrUnauthenticated
	}

	user, err := s.getUserCached(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return policy.Identity{}, ErrUnauthenticated
		}
		return policy.Identity{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	return policy.Identity{ID: user.ID, Role: user.Role}, nil
}

func (s *doubtService) getUserCached(ctx context.Context, userID string) (*models.User, error) {
	if s.cache == nil {
		return s.repo.User().GetByID(ctx, nil, userID)
	}

	var user models.User
	err := s.cache.User.CacheOrExecute(ctx, "id:"+userID, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.User().GetByID(ctx, nil, userID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// getDoubtCached reads a doubt through the cache-aside helper. Author
// names are projected before the value reaches the cache because the
// user relations do not survive the JSON round-trip.
func (s *doubtService) getDoubtCached(ctx context.Context, id string) (*models.Doubt, error) {
	if s.cache == nil {
		return s.repo.Doubt().GetByIDWithAnswers(ctx, nil, id)
	}

	var doubt models.Doubt
	err := s.cache.Doubt.CacheOrExecute(ctx, "id:"+id, &doubt, cache.DoubtCacheConfig.TTL, func() (interface{}, error) {
		loaded, err := s.repo.Doubt().GetByIDWithAnswers(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		projectAuthorNames(loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return &doubt, nil
}

func (s *doubtService) invalidateCache(ctx context.Context, doubtID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDoubt(ctx, doubtID); err != nil {
		s.logger.Warn("Cache invalidation failed", "doubt_id", doubtID, "error", err)
	}
}

// publishEvent publishes best-effort: a broker outage must not fail
// the user-facing operation.
func (s *doubtService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, DoubtEventsTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func (s *doubtService) denyError(effect policy.Effect, userID, doubtID, action string) error {
	switch effect {
	case policy.DenyNotFound:
		return ErrDoubtNotFound
	case policy.DenyConflict:
		return ErrDoubtResolved
	default:
		return NewPermissionError(userID, doubtID, "doubt", action, "not author or instructor")
	}
}

// projectAuthorNames copies the display name out of each loaded user
// relation. Values that arrived from the cache have no relations, so
// an already-projected name is never overwritten with an empty one.
func projectAuthorNames(doubt *models.Doubt) {
	if doubt.Author.Name != "" {
		doubt.AuthorName = doubt.Author.Name
	}
	for i := range doubt.Answers {
		if doubt.Answers[i].Author.Name != "" {
			doubt.Answers[i].AuthorName = doubt.Answers[i].Author.Name
		}
	}
}

func (s *doubtService) buildDoubtResponse(doubt *models.Doubt, identity policy.Identity) *DoubtResponse {
	projectAuthorNames(doubt)

	return &DoubtResponse{
		Doubt:      doubt,
		CanEdit:    s.policy.CanEditDoubt(identity, doubt).Allowed(),
		CanDelete:  s.policy.CanDeleteDoubt(identity, doubt).Allowed(),
		CanResolve: s.policy.CanResolveDoubt(identity, doubt).Allowed(),
	}
}

func (s *doubtService) buildDoubtListResponse(doubts []*models.Doubt, total int64, limit, offset int, identity policy.Identity) *DoubtListResponse {
	responses := make([]*DoubtResponse, 0, len(doubts))
	for _, doubt := range doubts {
		responses = append(responses, s.buildDoubtResponse(doubt, identity))
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	return &DoubtListResponse{
		Doubts: responses,
		Total:  total,
		Page:   page,
		Size:   len(responses),
	}
}
