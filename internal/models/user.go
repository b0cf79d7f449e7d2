package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
)

// IsValid reports whether the role is one of the two known values.
// Roles are a closed set; there is no role hierarchy.
func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleInstructor
}

type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:36"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role  UserRole `json:"role" gorm:"not null;size:20;index"`

	// Bcrypt hash, never serialized
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Doubts  []Doubt  `json:"-" gorm:"foreignKey:AuthorID"`
	Answers []Answer `json:"-" gorm:"foreignKey:AuthorID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
