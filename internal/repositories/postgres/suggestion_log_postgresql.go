package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

type suggestionLogRepository struct {
	db *gorm.DB
}

func NewSuggestionLogPostgreSQL(db *gorm.DB) repositories.SuggestionLogRepository {
	return &suggestionLogRepository{db: db}
}

func (r *suggestionLogRepository) Create(ctx context.Context, tx *gorm.DB, log *models.SuggestionLog) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(log).Error; err != nil {
		return handleDBError(err, "create suggestion log")
	}
	return nil
}

func (r *suggestionLogRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SuggestionLogFilters) ([]*models.SuggestionLog, int64, error) {
	db := r.getDB(tx)
	var logs []*models.SuggestionLog
	var total int64

	query := db.WithContext(ctx).Model(&models.SuggestionLog{})

	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count suggestion logs")
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, handleDBError(err, "list suggestion logs")
	}

	return logs, total, nil
}

func (r *suggestionLogRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
