package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SuggestionLog records each AI answer-suggestion call for auditing.
// Failures of the AI collaborator are not logged here; only completed
// suggestions are.
type SuggestionLog struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	InstructorID string `json:"instructor_id" gorm:"not null;index;size:36"`
	DoubtTitle   string `json:"doubt_title" gorm:"not null;size:100"`
	Model        string `json:"model" gorm:"not null;size:100"`

	Request  datatypes.JSON `json:"request"`
	Response datatypes.JSON `json:"response"`

	CreatedAt time.Time `json:"created_at"`
}

func (SuggestionLog) TableName() string {
	return "suggestion_logs"
}

func (s *SuggestionLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
