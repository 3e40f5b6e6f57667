package response

import (
	"codekids/internal/blocks"
	"time"
)

type Workspace struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	LearnerID   string               `json:"learnerId"`
	ChallengeID *uint                `json:"challengeId,omitempty"`
	Blocks      []blocks.BlockRecord `json:"blocks"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type AppendBlockResult struct {
	Block     BlockInstance `json:"block"`
	Workspace Workspace     `json:"workspace"`
}

type RemoveBlockResult struct {
	Removed   bool      `json:"removed"`
	Workspace Workspace `json:"workspace"`
}

// WorkspaceRun carries the verdict only for workspaces attached to a challenge
type WorkspaceRun struct {
	Commands    []blocks.Command `json:"commands"`
	ChallengeID *uint            `json:"challengeId,omitempty"`
	Passed      *bool            `json:"passed,omitempty"`
}
