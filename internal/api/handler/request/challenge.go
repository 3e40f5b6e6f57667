package request

import (
	"codekids/internal/api/models"
	"encoding/json"
)

// CreateChallenge is the request for creating a challenge
type CreateChallenge struct {
	Title            string                     `json:"title" validate:"required"`
	Description      string                     `json:"description" validate:"required"`
	Difficulty       models.ChallengeDifficulty `json:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced"`
	Type             models.ChallengeType       `json:"type" validate:"required,oneof=maze art game puzzle"`
	GoalDescription  string                     `json:"goalDescription" validate:"required"`
	ImageURL         string                     `json:"imageUrl" validate:"required"`
	Order            int                        `json:"order" validate:"gte=0"`
	InitialBlocks    json.RawMessage            `json:"initialBlocks"`
	ExpectedSolution []string                   `json:"expectedSolution" validate:"required,dive,command"`
}

// UpdateChallenge is the request for patching a challenge
type UpdateChallenge struct {
	Title            *string                     `json:"title,omitempty" validate:"omitempty,min=1"`
	Description      *string                     `json:"description,omitempty"`
	Difficulty       *models.ChallengeDifficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Type             *models.ChallengeType       `json:"type,omitempty" validate:"omitempty,oneof=maze art game puzzle"`
	GoalDescription  *string                     `json:"goalDescription,omitempty"`
	ImageURL         *string                     `json:"imageUrl,omitempty"`
	Order            *int                        `json:"order,omitempty" validate:"omitempty,gte=0"`
	InitialBlocks    json.RawMessage             `json:"initialBlocks,omitempty"`
	ExpectedSolution []string                    `json:"expectedSolution,omitempty" validate:"omitempty,dive,command"`
}

// AttemptChallenge submits a learner's program for grading
type AttemptChallenge struct {
	LearnerID string          `json:"learnerId" validate:"required,max=64"`
	Blocks    json.RawMessage `json:"blocks" validate:"required"`
}
