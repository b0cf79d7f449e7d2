package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(answer).Error; err != nil {
		return handleDBError(err, "create answer")
	}
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Answer, error) {
	db := r.getDB(tx)
	var answer models.Answer

	if err := db.WithContext(ctx).
		Preload("Author").
		First(&answer, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get answer by id")
	}

	return &answer, nil
}

func (r *answerRepository) ListByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) ([]*models.Answer, error) {
	db := r.getDB(tx)
	var answers []*models.Answer

	if err := db.WithContext(ctx).
		Where("doubt_id = ?", doubtID).
		Preload("Author").
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, handleDBError(err, "list answers by doubt")
	}

	return answers, nil
}

func (r *answerRepository) CountByDoubt(ctx context.Context, tx *gorm.DB, doubtID string) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("doubt_id = ?", doubtID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count answers by doubt")
	}
	return count, nil
}

func (r *answerRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
