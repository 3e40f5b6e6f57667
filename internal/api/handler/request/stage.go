package request

import "encoding/json"

type RunStage struct {
	Blocks json.RawMessage `json:"blocks" validate:"required"`
}
