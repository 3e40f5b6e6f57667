package models

import (
	"codekids/internal/blocks"
	"time"

	"gorm.io/gorm"
)

// ChallengeDifficulty is shown on the challenge card
type ChallengeDifficulty string

const (
	ChallengeDifficultyBeginner     ChallengeDifficulty = "Beginner"
	ChallengeDifficultyIntermediate ChallengeDifficulty = "Intermediate"
	ChallengeDifficultyAdvanced     ChallengeDifficulty = "Advanced"
)

// ChallengeType selects the challenge artwork and stage layout
type ChallengeType string

const (
	ChallengeTypeMaze   ChallengeType = "maze"
	ChallengeTypeArt    ChallengeType = "art"
	ChallengeTypeGame   ChallengeType = "game"
	ChallengeTypePuzzle ChallengeType = "puzzle"
)

var challengeImages = map[ChallengeType]string{
	ChallengeTypeMaze:   "/images/challenges/maze.svg",
	ChallengeTypeArt:    "/images/challenges/drawing.svg",
	ChallengeTypeGame:   "/images/challenges/dinosaur.svg",
	ChallengeTypePuzzle: "/images/challenges/bug.svg",
}

// ChallengeTypes lists every challenge type
func ChallengeTypes() []ChallengeType {
	return []ChallengeType{ChallengeTypeMaze, ChallengeTypeArt, ChallengeTypeGame, ChallengeTypePuzzle}
}

// ImageURL returns the stock artwork of a challenge type
func (t ChallengeType) ImageURL() string {
	return challengeImages[t]
}

// Challenge is a graded exercise. A submission passes when its command list is
// exactly ExpectedSolution.
type Challenge struct {
	ID               uint                  `gorm:"primaryKey" json:"id"`
	Title            string                `gorm:"not null" json:"title"`
	Description      string                `gorm:"not null" json:"description"`
	Difficulty       ChallengeDifficulty   `gorm:"not null;type:varchar(20)" json:"difficulty"`
	Type             ChallengeType         `gorm:"not null;type:varchar(20)" json:"type"`
	GoalDescription  string                `gorm:"not null" json:"goalDescription"`
	ImageURL         string                `gorm:"not null" json:"imageUrl"`
	SortOrder        int                   `gorm:"not null;index" json:"order"`
	InitialBlocks    blocks.ProgramRecords `gorm:"type:jsonb" json:"initialBlocks"`
	ExpectedSolution blocks.CommandList    `gorm:"type:jsonb" json:"expectedSolution"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt        `gorm:"index" json:"-"`
}
