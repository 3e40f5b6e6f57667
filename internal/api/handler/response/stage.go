package response

import "codekids/internal/blocks"

type StageRun struct {
	StageID  string           `json:"stageId"`
	RunID    string           `json:"runId"`
	Commands []blocks.Command `json:"commands"`
}

type StageStop struct {
	StageID string `json:"stageId"`
	Stopped bool   `json:"stopped"`
}
