package realtime

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSBridge subscribes to NATS subjects and pushes frames into the Hub.
type NATSBridge struct {
	conn     *nats.Conn
	hub      *Hub
	tenantID string
	logger   zerolog.Logger
}

func NewNATSBridge(natsURL, tenantID string, hub *Hub, logger zerolog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL, nats.Name("codekids-realtime"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub, tenantID: tenantID, logger: logger}, nil
}

// Subscribe listens for frames on tenant.<tenantID>.stage.*.frame
func (b *NATSBridge) Subscribe() error {
	subject := FrameSubject(b.tenantID, "*")
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		stageID, err := parseStageIDFromSubject(msg.Subject)
		if err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("nats: bad subject")
			return
		}
		if err := b.hub.Publish(stageID, msg.Data); err != nil {
			b.logger.Warn().Err(err).Str("stageId", stageID).Msg("nats: forward frame")
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("nats drain")
	}
}

// parseStageIDFromSubject extracts stageId from "tenant.<tid>.stage.<stageId>.frame"
func parseStageIDFromSubject(subject string) (string, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 5 {
		return "", fmt.Errorf("expected 5 parts, got %d", len(parts))
	}
	if parts[0] != "tenant" || parts[2] != "stage" || parts[4] != "frame" {
		return "", fmt.Errorf("unexpected subject layout %q", subject)
	}
	if !ValidStageID(parts[3]) {
		return "", fmt.Errorf("invalid stage id %q", parts[3])
	}
	return parts[3], nil
}
