package models

import (
	"codekids/internal/blocks"
	"time"

	"gorm.io/gorm"
)

// Workspace is a learner's saved program, optionally attached to a challenge
type Workspace struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	Name        string                `gorm:"not null" json:"name"`
	LearnerID   string                `gorm:"not null;type:varchar(64);index" json:"learnerId"`
	ChallengeID *uint                 `gorm:"index" json:"challengeId,omitempty"`
	Challenge   *Challenge            `gorm:"foreignKey:ChallengeID;constraint:OnDelete:SET NULL" json:"-"`
	Blocks      blocks.ProgramRecords `gorm:"type:jsonb" json:"blocks"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt        `gorm:"index" json:"-"`
}
