package response

type APIError struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// MalformedProgram locates the offending record of a rejected program.
// Index is -1 when the document itself is not a list.
type MalformedProgram struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}
