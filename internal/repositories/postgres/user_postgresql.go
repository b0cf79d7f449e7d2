package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}

	return &user, nil
}

func (r *userRepository) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user email exists")
	}
	return count > 0, nil
}

func (r *userRepository) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, role).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user role")
	}
	return count > 0, nil
}

func (r *userRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
