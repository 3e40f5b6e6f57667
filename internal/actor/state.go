package actor

import (
	"time"

	"codekids/internal/blocks"
)

// Status of an animator
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)

// Event names the transition a frame describes
type Event string

const (
	EventStarted   Event = "started"
	EventStep      Event = "step"
	EventCompleted Event = "completed"
	EventCancelled Event = "cancelled"
)

// Point is a position on the stage. The origin is where the actor stands
// before a run; negative Y is up.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// State is the observable state of the actor
type State struct {
	Position   Point  `json:"position"`
	Heading    int    `json:"heading"`
	SpeechText string `json:"speechText,omitempty"`
	Visible    bool   `json:"visible"`
}

// InitialState is the canonical state before and after every run
func InitialState() State {
	return State{
		Position: Point{X: 0, Y: 0},
		Heading:  0,
		Visible:  true,
	}
}

// Frame is published on every transition of an animator
type Frame struct {
	StageID string         `json:"stageId"`
	RunID   string         `json:"runId,omitempty"`
	Event   Event          `json:"event"`
	Status  Status         `json:"status"`
	Step    int            `json:"step"`
	Total   int            `json:"total"`
	Command blocks.Command `json:"command,omitempty"`
	State   State          `json:"state"`
	At      time.Time      `json:"at"`
}

// FrameSink receives frames outside the animator lock
type FrameSink func(Frame)

// Config holds the playback constants
type Config struct {
	Quantum        time.Duration
	TrailingBuffer time.Duration
	Step           int
	Greeting       string
}

// DefaultConfig mirrors the preview panel: one command per second, half a
// second of trailing buffer and 50 units per move.
func DefaultConfig() Config {
	return Config{
		Quantum:        time.Second,
		TrailingBuffer: 500 * time.Millisecond,
		Step:           50,
		Greeting:       "Hello!",
	}
}
