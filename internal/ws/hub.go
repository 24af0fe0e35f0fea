package ws

import (
	"encoding/json"
	"sync"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Open live update connections",
	})
	eventsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_events_total",
		Help: "Task events by delivery result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(activeConnections, eventsSent)
}

// Hub fans task events out to every open connection of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	activeConnections.Inc()
}

// Unregister removes c and closes its send channel. Calling it twice is
// safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	activeConnections.Dec()
}

// Publish implements service.EventPublisher. Connections whose buffer is
// full are dropped.
func (h *Hub) Publish(userID string, ev domain.TaskEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal event", "error", err, "type", ev.Type)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
			eventsSent.WithLabelValues("sent").Inc()
		default:
			logger.Warn("ws: dropping slow client", "user_id", userID)
			eventsSent.WithLabelValues("dropped").Inc()
			h.removeLocked(c)
		}
	}
}

// Connections reports how many connections userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every connection, used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
