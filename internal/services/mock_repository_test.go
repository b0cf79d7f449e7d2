package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

// memoryRepository is an in-memory Repository implementation for
// service tests. It mirrors the filter semantics of the postgres
// implementation closely enough for the service layer.
type memoryRepository struct {
	mu sync.Mutex

	doubts  map[string]*models.Doubt
	answers map[string]*models.Answer
	users   map[string]*models.User
	logs    []*models.SuggestionLog

	seq int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		doubts:  make(map[string]*models.Doubt),
		answers: make(map[string]*models.Answer),
		users:   make(map[string]*models.User),
	}
}

func (m *memoryRepository) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryRepository) addUser(id, name string, role models.UserRole) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{
		ID:    id,
		Name:  name,
		Email: id + "@example.com",
		Role:  role,
	}
	m.users[id] = user
	return user
}

func (m *memoryRepository) addDoubt(id, title, authorID string, status models.DoubtStatus) *models.Doubt {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	doubt := &models.Doubt{
		ID:        id,
		Title:     title,
		Content:   "content for " + title,
		Status:    status,
		AuthorID:  authorID,
		CreatedAt: time.Now().Add(time.Duration(m.seq) * time.Second),
		UpdatedAt: time.Now().Add(time.Duration(m.seq) * time.Second),
	}
	m.doubts[id] = doubt
	return doubt
}

// ===== Repository interface =====

func (m *memoryRepository) Doubt() repositories.DoubtRepository   { return (*memoryDoubtRepo)(m) }
func (m *memoryRepository) Answer() repositories.AnswerRepository { return (*memoryAnswerRepo)(m) }
func (m *memoryRepository) User() repositories.UserRepository     { return (*memoryUserRepo)(m) }
func (m *memoryRepository) SuggestionLog() repositories.SuggestionLogRepository {
	return (*memoryLogRepo)(m)
}

func (m *memoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *memoryRepository) Ping(ctx context.Context) error { return nil }
func (m *memoryRepository) Close() error                   { return nil }

// ===== DoubtRepository =====

type memoryDoubtRepo memoryRepository

func (r *memoryDoubtRepo) Create(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doubt.ID == "" {
		doubt.ID = (*memoryRepository)(r).nextID("doubt")
	}
	if doubt.Status == "" {
		doubt.Status = models.StatusOpen
	}
	r.seq++
	doubt.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Second)
	doubt.UpdatedAt = doubt.CreatedAt
	copied := *doubt
	r.doubts[doubt.ID] = &copied
	return nil
}

func (r *memoryDoubtRepo) get(id string) (*models.Doubt, error) {
	doubt, ok := r.doubts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *doubt
	if author, ok := r.users[doubt.AuthorID]; ok {
		copied.Author = *author
	}
	return &copied, nil
}

func (r *memoryDoubtRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memoryDoubtRepo) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doubt, err := r.get(id)
	if err != nil {
		return nil, err
	}
	doubt.Answers = r.answersFor(id)
	return doubt, nil
}

func (r *memoryDoubtRepo) answersFor(doubtID string) []models.Answer {
	var out []models.Answer
	for _, answer := range r.answers {
		if answer.DoubtID != doubtID {
			continue
		}
		copied := *answer
		if author, ok := r.users[answer.AuthorID]; ok {
			copied.Author = *author
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memoryDoubtRepo) Update(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doubts[doubt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *doubt
	r.doubts[doubt.ID] = &copied
	return nil
}

func (r *memoryDoubtRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doubts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.doubts, id)
	for answerID, answer := range r.answers {
		if answer.DoubtID == id {
			delete(r.answers, answerID)
		}
	}
	return nil
}

func (r *memoryDoubtRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.DoubtFilters) ([]*models.Doubt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query("", filters, 0)
}

func (r *memoryDoubtRepo) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.DoubtFilters) ([]*models.Doubt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query(query, filters, 50)
}

func (r *memoryDoubtRepo) query(query string, filters repositories.DoubtFilters, cap int) ([]*models.Doubt, int64, error) {
	var matched []*models.Doubt
	for _, doubt := range r.doubts {
		if filters.Status != nil && doubt.Status != *filters.Status {
			continue
		}
		if filters.AuthorID != nil && doubt.AuthorID != *filters.AuthorID {
			continue
		}
		if filters.ViewerID != nil && doubt.AuthorID != *filters.ViewerID && doubt.Status != models.StatusResolved {
			continue
		}
		if query != "" {
			q := strings.ToLower(query)
			if !strings.Contains(strings.ToLower(doubt.Title), q) && !strings.Contains(strings.ToLower(doubt.Content), q) {
				continue
			}
		}
		copied := *doubt
		if author, ok := r.users[doubt.AuthorID]; ok {
			copied.Author = *author
		}
		copied.Answers = r.answersFor(doubt.ID)
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))

	limit := filters.Limit
	if cap > 0 && (limit <= 0 || limit > cap) {
		limit = cap
	}
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total, nil
}

func (r *memoryDoubtRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.DoubtStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doubt, ok := r.doubts[id]
	if !ok || doubt.Status == status {
		return gorm.ErrRecordNotFound
	}
	doubt.Status = status
	doubt.UpdatedAt = time.Now()
	return nil
}

func (r *memoryDoubtRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.doubts[id]
	return ok, nil
}

func (r *memoryDoubtRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status models.DoubtStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, doubt := range r.doubts {
		if doubt.Status == status {
			count++
		}
	}
	return count, nil
}

// ===== AnswerRepository =====

type memoryAnswerRepo memoryRepository

func (r *memoryAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if answer.ID == "" {
		answer.ID = (*memoryRepository)(r).nextID("answer")
	}
	r.seq++
	answer.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Second)
	copied := *answer
	r.answers[answer.ID] = &copied
	return nil
}

func (r *memoryAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *answer
	if author, ok := r.users[answer.AuthorID]; ok {
		copied.Author = *author
	}
	return &copied, nil
}

func (r *memoryAnswerRepo) ListByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) ([]*models.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answers := (*memoryDoubtRepo)(r).answersFor(doubtID)
	out := make([]*models.Answer, len(answers))
	for i := range answers {
		copied := answers[i]
		out[i] = &copied
	}
	return out, nil
}

func (r *memoryAnswerRepo) CountByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, answer := range r.answers {
		if answer.DoubtID == doubtID {
			count++
		}
	}
	return count, nil
}

// ===== UserRepository =====

type memoryUserRepo memoryRepository

func (r *memoryUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = (*memoryRepository)(r).nextID("user")
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	return ok && user.Role == role, nil
}

// ===== SuggestionLogRepository =====

type memoryLogRepo memoryRepository

func (r *memoryLogRepo) Create(ctx context.Context, tx *gorm.DB, log *models.SuggestionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = (*memoryRepository)(r).nextID("log")
	}
	log.CreatedAt = time.Now()
	copied := *log
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *memoryLogRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SuggestionLogFilters) ([]*models.SuggestionLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SuggestionLog
	for _, log := range r.logs {
		if filters.InstructorID != nil && log.InstructorID != *filters.InstructorID {
			continue
		}
		copied := *log
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}
