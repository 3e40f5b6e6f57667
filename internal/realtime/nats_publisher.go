package realtime

import (
	"codekids/internal/actor"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher sends frames to tenant.<tenant>.stage.<stageId>.frame
type NATSPublisher struct {
	conn     *nats.Conn
	tenantID string
	logger   zerolog.Logger
}

// NewFramePublisher connects to NATS. Best-effort: if the connection fails a
// no-op publisher is returned so runs keep working without a bus.
func NewFramePublisher(natsURL, tenantID string, logger zerolog.Logger) FramePublisher {
	nc, err := nats.Connect(natsURL, nats.Name("codekids-api"))
	if err != nil {
		logger.Warn().Err(err).Str("url", natsURL).Msg("NATS connection failed, frame publishing disabled")
		return NewNoopPublisher(logger)
	}

	logger.Info().Str("subject", FrameSubject(tenantID, "*")).Msg("NATS connected, publishing frames")
	return &NATSPublisher{conn: nc, tenantID: tenantID, logger: logger}
}

func (p *NATSPublisher) Publish(frame actor.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("frame marshal: %w", err)
	}
	if err := p.conn.Publish(FrameSubject(p.tenantID, frame.StageID), data); err != nil {
		return fmt.Errorf("frame publish: %w", err)
	}
	return nil
}

// Close drains the NATS connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("NATS drain error")
	}
}
