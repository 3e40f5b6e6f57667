package realtime

import (
	"codekids/internal/actor"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const mqttTimeout = 10 * time.Second

var (
	ErrMQTTConnectTimeout   = errors.New("mqtt connect timeout")
	ErrMQTTPublishTimeout   = errors.New("mqtt publish timeout")
	ErrMQTTSubscribeTimeout = errors.New("mqtt subscribe timeout")
)

// MQTTClient wraps the Paho client
type MQTTClient struct {
	client paho.Client
	mu     sync.Mutex
}

// NewMQTTClient creates a client but does not connect
func NewMQTTClient(brokerURL, clientID string) *MQTTClient {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	return &MQTTClient{client: paho.NewClient(opts)}
}

// Connect attempts to connect without blocking indefinitely
func (c *MQTTClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return ErrMQTTConnectTimeout
	}
	return token.Error()
}

func (c *MQTTClient) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return ErrMQTTPublishTimeout
	}
	return token.Error()
}

func (c *MQTTClient) Subscribe(topic string, handler paho.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Subscribe(topic, 1, handler)
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("%w: %s", ErrMQTTSubscribeTimeout, topic)
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker
func (c *MQTTClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(1000)
}

// MQTTPublisher sends frames to codekids/<tenant>/stage/<stageId>/frame
type MQTTPublisher struct {
	client   *MQTTClient
	tenantID string
	logger   zerolog.Logger
}

// NewMQTTFramePublisher connects to the broker. Like the NATS publisher it
// degrades to a no-op publisher when the broker is unreachable.
func NewMQTTFramePublisher(brokerURL, clientID, tenantID string, logger zerolog.Logger) FramePublisher {
	client := NewMQTTClient(brokerURL, clientID)
	if err := client.Connect(); err != nil {
		client.Disconnect()
		logger.Warn().Err(err).Str("url", brokerURL).Msg("MQTT connection failed, frame publishing disabled")
		return NewNoopPublisher(logger)
	}

	logger.Info().Str("topic", FrameTopic(tenantID, "+")).Msg("MQTT connected, publishing frames")
	return &MQTTPublisher{client: client, tenantID: tenantID, logger: logger}
}

func (p *MQTTPublisher) Publish(frame actor.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("frame marshal: %w", err)
	}
	return p.client.Publish(FrameTopic(p.tenantID, frame.StageID), data)
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect()
}

// MQTTBridge subscribes to frame topics and pushes them into the Hub
type MQTTBridge struct {
	client   *MQTTClient
	hub      *Hub
	tenantID string
	logger   zerolog.Logger
}

func NewMQTTBridge(brokerURL, clientID, tenantID string, hub *Hub, logger zerolog.Logger) (*MQTTBridge, error) {
	client := NewMQTTClient(brokerURL, clientID)
	if err := client.Connect(); err != nil {
		client.Disconnect()
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTBridge{client: client, hub: hub, tenantID: tenantID, logger: logger}, nil
}

// Subscribe listens on codekids/<tenantID>/stage/+/frame
func (b *MQTTBridge) Subscribe() error {
	topic := FrameTopic(b.tenantID, "+")
	err := b.client.Subscribe(topic, func(_ paho.Client, msg paho.Message) {
		stageID, err := parseStageIDFromTopic(msg.Topic())
		if err != nil {
			b.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("mqtt: bad topic")
			return
		}
		if err := b.hub.Publish(stageID, msg.Payload()); err != nil {
			b.logger.Warn().Err(err).Str("stageId", stageID).Msg("mqtt: forward frame")
		}
	})
	if err != nil {
		return fmt.Errorf("mqtt subscribe %q: %w", topic, err)
	}

	b.logger.Info().Str("topic", topic).Msg("MQTT bridge subscribed")
	return nil
}

func (b *MQTTBridge) Close() {
	b.client.Disconnect()
}

// parseStageIDFromTopic extracts stageId from "codekids/<tid>/stage/<stageId>/frame"
func parseStageIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != "codekids" || parts[2] != "stage" || parts[4] != "frame" {
		return "", fmt.Errorf("unexpected topic layout %q", topic)
	}
	if !ValidStageID(parts[3]) {
		return "", fmt.Errorf("invalid stage id %q", parts[3])
	}
	return parts[3], nil
}
