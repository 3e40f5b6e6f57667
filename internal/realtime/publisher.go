package realtime

import (
	"codekids/internal/actor"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

// FramePublisher pushes animator frames onto a message bus
type FramePublisher interface {
	Publish(frame actor.Frame) error
	Close()
}

var stageIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidStageID reports whether id can be embedded in a subject or topic. Dots,
// slashes and wildcards are rejected.
func ValidStageID(id string) bool {
	return stageIDPattern.MatchString(id)
}

// FrameSubject is the NATS subject frames of a stage are published on
func FrameSubject(tenantID, stageID string) string {
	return fmt.Sprintf("tenant.%s.stage.%s.frame", tenantID, stageID)
}

// FrameTopic is the MQTT topic frames of a stage are published on
func FrameTopic(tenantID, stageID string) string {
	return fmt.Sprintf("codekids/%s/stage/%s/frame", tenantID, stageID)
}

// NoopPublisher drops frames, logging them at debug level
type NoopPublisher struct {
	logger zerolog.Logger
}

func NewNoopPublisher(logger zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(frame actor.Frame) error {
	p.logger.Debug().
		Str("stageId", frame.StageID).
		Str("event", string(frame.Event)).
		Int("step", frame.Step).
		Msg("frame (no-op)")
	return nil
}

func (p *NoopPublisher) Close() {}
