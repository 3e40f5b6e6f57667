package response

import "codekids/internal/blocks"

type Block struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Text     string `json:"text"`
	Icon     string `json:"icon"`
}

// CategoryBlocks is one palette section
type CategoryBlocks struct {
	Category string  `json:"category"`
	Blocks   []Block `json:"blocks"`
}

type BlockInstance struct {
	InstanceID string `json:"instanceId"`
	Block
}

type RunResult struct {
	Commands []blocks.Command `json:"commands"`
}

type CheckResult struct {
	Passed   bool             `json:"passed"`
	Commands []blocks.Command `json:"commands"`
}
