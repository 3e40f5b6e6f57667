package request

import "encoding/json"

// RunProgram carries a serialized program: a JSON array of block records
type RunProgram struct {
	Blocks json.RawMessage `json:"blocks" validate:"required"`
}

// CheckProgram grades a program against an expected command list
type CheckProgram struct {
	Blocks   json.RawMessage `json:"blocks" validate:"required"`
	Expected []string        `json:"expected" validate:"required,dive,command"`
}
