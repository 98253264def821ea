package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/sse"
)

// EventsHandler streams snapshot changes to browsing clients.
type EventsHandler struct {
	hub            *sse.Hub
	catalogService *service.CatalogService
	pingInterval   time.Duration
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *sse.Hub, catalogService *service.CatalogService) *EventsHandler {
	return &EventsHandler{hub: hub, catalogService: catalogService, pingInterval: 30 * time.Second}
}

// Stream handles GET /v1/catalog/events. The first event carries the live
// snapshot status; a "snapshot" event follows every refresh.
func (h *EventsHandler) Stream(c *gin.Context) {
	clientID := "catalog-" + uuid.New().String()[:8]

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId": clientID,
		"catalog":  h.catalogService.Status(),
	})
	c.Writer.Flush()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", string(data))
			return true
		case <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
