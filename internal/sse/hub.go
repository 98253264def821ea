package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventSnapshotLoaded EventType = "catalog.snapshot_loaded"
)

// SnapshotEvent tells browsing clients that a new catalog snapshot is live
// and their current page may be stale.
type SnapshotEvent struct {
	Event      EventType `json:"event"`
	Version    int64     `json:"version"`
	Products   int       `json:"products"`
	Categories int       `json:"categories"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client is one open event stream. Events holds at most the newest pending
// snapshot event; an unread older one is replaced.
type Client struct {
	ID     string
	Events chan []byte
}

// Hub fans snapshot events out to connected clients.
type Hub struct {
	mu          sync.Mutex
	clients     map[string]*Client
	lastVersion int64
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client and returns it for streaming.
func (h *Hub) Register(clientID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Events: make(chan []byte, 1),
	}
	h.clients[clientID] = c
	log.Debug().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Debug().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast delivers event to every client without blocking. Events older
// than the last broadcast version are ignored, and a slow client only ever
// sees the newest snapshot.
func (h *Hub) Broadcast(event *SnapshotEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if event.Version < h.lastVersion {
		log.Debug().Int64("version", event.Version).Int64("last_version", h.lastVersion).Msg("Stale snapshot event ignored")
		return
	}
	h.lastVersion = event.Version

	for _, c := range h.clients {
		select {
		case c.Events <- data:
			continue
		default:
		}
		// Replace the unread event; the reader may have taken it meanwhile.
		select {
		case <-c.Events:
		default:
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
