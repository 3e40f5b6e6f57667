package response

import (
	"codekids/internal/blocks"
	"time"
)

type Challenge struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Difficulty       string               `json:"difficulty"`
	Type             string               `json:"type"`
	GoalDescription  string               `json:"goalDescription"`
	ImageURL         string               `json:"imageUrl"`
	Order            int                  `json:"order"`
	InitialBlocks    []blocks.BlockRecord `json:"initialBlocks"`
	ExpectedSolution []blocks.Command     `json:"expectedSolution"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

type ChallengeProgress struct {
	ChallengeID uint      `json:"challengeId"`
	LearnerID   string    `json:"learnerId"`
	Completed   bool      `json:"completed"`
	StarsEarned int       `json:"starsEarned"`
	Attempts    int       `json:"attempts"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type AttemptResult struct {
	Passed   bool              `json:"passed"`
	Commands []blocks.Command  `json:"commands"`
	Progress ChallengeProgress `json:"progress"`
}
