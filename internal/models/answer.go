package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is an instructor reply to a doubt. Answers are append-only:
// the service exposes no edit or delete operation for them.
type Answer struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	Content string `json:"content" gorm:"not null;type:text"`

	DoubtID  string `json:"doubt_id" gorm:"not null;index;size:36"`
	AuthorID string `json:"author_id" gorm:"not null;index;size:36"`

	// AuthorName is projected from Author on read, same as on Doubt.
	AuthorName string    `json:"author_name" gorm:"-"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Author User `json:"-" gorm:"foreignKey:AuthorID"`
}

func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
