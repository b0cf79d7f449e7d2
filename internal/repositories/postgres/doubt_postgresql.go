package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

// searchResultCap bounds search result pages so a broad query cannot
// sweep the whole table.
const searchResultCap = 50

type doubtRepository struct {
	db *gorm.DB
}

func NewDoubtPostgreSQL(db *gorm.DB) repositories.DoubtRepository {
	return &doubtRepository{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *doubtRepository) Create(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(doubt).Error; err != nil {
		return r.handleDBError(err, "create doubt")
	}
	return nil
}

func (r *doubtRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error) {
	db := r.getDB(tx)
	var doubt models.Doubt

	if err := db.WithContext(ctx).
		Preload("Author").
		First(&doubt, "id = ?", id).Error; err != nil {
		return nil, r.handleDBError(err, "get doubt by id")
	}

	return &doubt, nil
}

func (r *doubtRepository) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id string) (*models.Doubt, error) {
	db := r.getDB(tx)
	var doubt models.Doubt

	if err := db.WithContext(ctx).
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at ASC")
		}).
		Preload("Answers.Author").
		First(&doubt, "id = ?", id).Error; err != nil {
		return nil, r.handleDBError(err, "get doubt with answers")
	}

	return &doubt, nil
}

func (r *doubtRepository) Update(ctx context.Context, tx *gorm.DB, doubt *models.Doubt) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(doubt).Error; err != nil {
		return r.handleDBError(err, "update doubt")
	}
	return nil
}

func (r *doubtRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Doubt{}, "id = ?", id)
	if result.Error != nil {
		return r.handleDBError(result.Error, "delete doubt")
	}
	if result.RowsAffected == 0 {
		return r.handleDBError(gorm.ErrRecordNotFound, "delete doubt")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *doubtRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.DoubtFilters) ([]*models.Doubt, int64, error) {
	db := r.getDB(tx)
	var doubts []*models.Doubt
	var total int64

	query := db.WithContext(ctx).Model(&models.Doubt{}).
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at ASC")
		}).
		Preload("Answers.Author")

	// Apply filters
	query = r.applyDoubtFilters(query, filters)

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleDBError(err, "count doubts")
	}

	// Apply pagination and sorting
	query = r.applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Find(&doubts).Error; err != nil {
		return nil, 0, r.handleDBError(err, "list doubts")
	}

	return doubts, total, nil
}

func (r *doubtRepository) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.DoubtFilters) ([]*models.Doubt, int64, error) {
	db := r.getDB(tx)
	var doubts []*models.Doubt
	var total int64

	dbQuery := db.WithContext(ctx).Model(&models.Doubt{}).
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at ASC")
		}).
		Preload("Answers.Author")

	if query != "" {
		searchQuery := "%" + query + "%"
		dbQuery = dbQuery.Where("title ILIKE ? OR content ILIKE ?", searchQuery, searchQuery)
	}

	// Apply filters
	dbQuery = r.applyDoubtFilters(dbQuery, filters)

	// Count total
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, r.handleDBError(err, "count search results")
	}

	// Cap search pages
	limit := filters.Limit
	if limit <= 0 || limit > searchResultCap {
		limit = searchResultCap
	}

	dbQuery = r.applyPaginationAndSorting(dbQuery, limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := dbQuery.Find(&doubts).Error; err != nil {
		return nil, 0, r.handleDBError(err, "search doubts")
	}

	return doubts, total, nil
}

// ===== LIFECYCLE OPERATIONS =====

// UpdateStatus transitions a doubt to a new status. The guard on the
// current status makes the write a compare-and-set: of two racing
// transitions only one touches a row, the other sees zero rows.
func (r *doubtRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.DoubtStatus) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if result.Error != nil {
		return r.handleDBError(result.Error, "update doubt status")
	}
	if result.RowsAffected == 0 {
		return r.handleDBError(gorm.ErrRecordNotFound, "update doubt status")
	}
	return nil
}

// ===== VALIDATION AND CHECKS =====

func (r *doubtRepository) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, r.handleDBError(err, "check doubt exists")
	}
	return count > 0, nil
}

func (r *doubtRepository) CountByStatus(ctx context.Context, tx *gorm.DB, status models.DoubtStatus) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, r.handleDBError(err, "count doubts by status")
	}
	return count, nil
}

// ===== HELPER METHODS =====

func (r *doubtRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *doubtRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}

func (r *doubtRepository) applyDoubtFilters(query *gorm.DB, filters repositories.DoubtFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.AuthorID != nil {
		query = query.Where("author_id = ?", *filters.AuthorID)
	}
	if filters.ViewerID != nil {
		// Students see their own doubts plus the resolved knowledge base
		query = query.Where("author_id = ? OR status = ?", *filters.ViewerID, models.StatusResolved)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (r *doubtRepository) applyPaginationAndSorting(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	// Whitelist allowed sort columns: map API keys to SQL identifiers
	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"title":      "title",
		"status":     "status",
		"id":         "id",
	}

	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	// Use only mapped SQL column name and constant sort order
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
