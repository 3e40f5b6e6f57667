package models

import "time"

// MaxStars is awarded on a passing attempt
const MaxStars = 3

// ChallengeProgress tracks one learner on one challenge. Completed never goes
// back to false once set.
type ChallengeProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LearnerID   string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_progress_learner_challenge" json:"learnerId"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_progress_learner_challenge" json:"challengeId"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE" json:"-"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	StarsEarned int       `gorm:"not null;default:0" json:"starsEarned"`
	Attempts    int       `gorm:"not null;default:0" json:"attempts"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"lastUpdated"`
}
