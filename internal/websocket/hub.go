// Package websocket pushes alerts to connected dashboards.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xelth-com/mfgtrack/internal/logging"
	"github.com/xelth-com/mfgtrack/internal/models"
	"go.uber.org/zap"
)

// AlertMessage is the frame sent for every new alert
type AlertMessage struct {
	Type  string       `json:"type"`
	Alert models.Alert `json:"alert"`
}

// Hub maintains the set of subscribed dashboards and fans alerts out to them
type Hub struct {
	// Registered clients: client ID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Alert
	done       chan struct{}

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Alert, 64),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		logger:     logging.OrNop(logger),
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// write pumps see done and close their connections
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("Dashboard subscribed to alerts", zap.String("client", client.ID), zap.String("role", string(client.Role)))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				h.logger.Info("Dashboard unsubscribed", zap.String("client", client.ID))
			}
			h.mu.Unlock()

		case alert := <-h.broadcast:
			h.deliver(alert)
		}
	}
}

// Publish queues an alert for delivery. It never blocks the caller; when the
// queue is full the alert is dropped and logged.
func (h *Hub) Publish(alert models.Alert) {
	select {
	case h.broadcast <- alert:
	default:
		h.logger.Warn("Alert queue full, dropping push", zap.String("alert", alert.ID))
	}
}

// Subscribers returns the number of connected dashboards
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(alert models.Alert) {
	msg, err := json.Marshal(AlertMessage{Type: "ALERT", Alert: alert})
	if err != nil {
		h.logger.Error("Failed to encode alert", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.wants(alert) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// buffer full or client dead
			h.logger.Warn("Dropping alert for slow client", zap.String("client", c.ID))
		}
	}
}
