package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoubtStatus string

const (
	StatusOpen     DoubtStatus = "OPEN"
	StatusResolved DoubtStatus = "RESOLVED"
)

func (s DoubtStatus) IsValid() bool {
	return s == StatusOpen || s == StatusResolved
}

// Doubt is a student-submitted question. Status moves one way,
// OPEN -> RESOLVED; there is no reopen operation.
type Doubt struct {
	ID      string      `json:"id" gorm:"primaryKey;size:36"`
	Title   string      `json:"title" gorm:"not null;size:100;index"`
	Content string      `json:"content" gorm:"not null;type:text"`
	Status  DoubtStatus `json:"status" gorm:"not null;size:20;default:OPEN;index"`

	// AuthorID never changes after creation.
	AuthorID string `json:"author_id" gorm:"not null;index;size:36"`

	// AuthorName is projected from Author on read. Only the name is
	// exposed; email and password hash never leave the user model.
	AuthorName string    `json:"author_name" gorm:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Author  User     `json:"-" gorm:"foreignKey:AuthorID"`
	Answers []Answer `json:"answers" gorm:"foreignKey:DoubtID;constraint:OnDelete:CASCADE"`
}

func (Doubt) TableName() string {
	return "doubts"
}

func (d *Doubt) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusOpen
	}
	return nil
}
