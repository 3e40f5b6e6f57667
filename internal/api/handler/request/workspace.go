package request

import "encoding/json"

// CreateWorkspace is the request for creating a workspace. Without blocks the
// workspace starts from the challenge's initial blocks or the starter program.
type CreateWorkspace struct {
	Name        string          `json:"name" validate:"required"`
	LearnerID   string          `json:"learnerId" validate:"required,max=64"`
	ChallengeID *uint           `json:"challengeId,omitempty"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
}

// SaveWorkspace replaces the name and/or the program of a workspace
type SaveWorkspace struct {
	Name   *string         `json:"name,omitempty" validate:"omitempty,min=1"`
	Blocks json.RawMessage `json:"blocks,omitempty"`
}

// AppendBlock places a catalog block at the end of a workspace program
type AppendBlock struct {
	Type string `json:"type" validate:"required"`
}
