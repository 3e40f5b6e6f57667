package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var errHubStopped = errors.New("hub stopped")

// Hub manages WebSocket clients and routes frames by stageId.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// stageId -> set of subscribed clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscribeMsg
	unsubscribe chan subscribeMsg
	broadcast   chan broadcastMsg
	done        chan struct{}

	logger zerolog.Logger
}

type subscribeMsg struct {
	client  *Client
	stageID string
}

type broadcastMsg struct {
	stageID string
	payload []byte
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscribeMsg),
		unsubscribe:   make(chan subscribeMsg),
		broadcast:     make(chan broadcastMsg, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Publish wraps a raw frame in the outgoing envelope and queues it for the
// stage's subscribers.
func (h *Hub) Publish(stageID string, frame []byte) error {
	envelope := outgoingMsg{
		Type:    messageTypeStageFrame,
		StageID: stageID,
		Payload: json.RawMessage(frame),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	select {
	case h.broadcast <- broadcastMsg{stageID: stageID, payload: data}:
		return nil
	case <-h.done:
		return errHubStopped
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Int("total", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.removeClient(client)
				h.logger.Debug().Int("total", len(h.clients)).Msg("client unregistered")
			}

		case msg := <-h.subscribe:
			if _, ok := h.clients[msg.client]; !ok {
				continue
			}
			if _, ok := h.subscriptions[msg.stageID]; !ok {
				h.subscriptions[msg.stageID] = make(map[*Client]bool)
			}
			h.subscriptions[msg.stageID][msg.client] = true
			h.logger.Debug().Str("stageId", msg.stageID).Int("subscribers", len(h.subscriptions[msg.stageID])).Msg("client subscribed")

		case msg := <-h.unsubscribe:
			if subs, ok := h.subscriptions[msg.stageID]; ok {
				delete(subs, msg.client)
				if len(subs) == 0 {
					delete(h.subscriptions, msg.stageID)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.stageID] {
				select {
				case client.send <- msg.payload:
				default:
					// Client buffer full, drop it
					h.removeClient(client)
					h.logger.Warn().Str("stageId", msg.stageID).Msg("slow client dropped")
				}
			}
		}
	}
}

// Register adds a client. It is a no-op once the hub stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe routes frames of stageID to client
func (h *Hub) Subscribe(client *Client, stageID string) {
	select {
	case h.subscribe <- subscribeMsg{client: client, stageID: stageID}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(client *Client, stageID string) {
	select {
	case h.unsubscribe <- subscribeMsg{client: client, stageID: stageID}:
	case <-h.done:
	}
}

func (h *Hub) removeClient(client *Client) {
	delete(h.clients, client)
	close(client.send)
	for stageID, subs := range h.subscriptions {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, stageID)
		}
	}
}
