package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency that can report liveness (database, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	catalogService *service.CatalogService
	deps           map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Nil dependencies are skipped.
func NewHealthHandler(catalogService *service.CatalogService, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{catalogService: catalogService, deps: deps}
}

// GetHealth responds with snapshot and dependency status. It returns 503
// until the first snapshot is loaded.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	for name, p := range h.deps {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			deps[name] = "disconnected"
		} else {
			deps[name] = "connected"
		}
	}

	st := h.catalogService.Status()
	data := gin.H{
		"status":       "healthy",
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"catalog":      st,
		"dependencies": deps,
	}
	if !st.Loaded {
		utils.Error(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet")
		return
	}
	c.Set("catalog_version", st.Version)
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
