package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *HealthHandler
	Catalog *CatalogHandler
	Session *SessionHandler
	Admin   *AdminHandler
	Webhook *WebhookHandler
	Events  *EventsHandler
}

// RegisterRoutes registers all routes. A nil adminAuth disables the admin
// group; a nil Webhook disables the webhook endpoint.
func RegisterRoutes(router *gin.Engine, h *Handlers, adminAuth gin.HandlerFunc) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/v1/health", h.Health.GetHealth)

	if h.Webhook != nil {
		router.POST("/webhook/catalog", h.Webhook.HandleCatalogWebhook)
	}

	cat := router.Group("/v1/catalog")
	{
		cat.GET("/categories", h.Catalog.GetCategories)
		cat.GET("/products", h.Catalog.GetProducts)
		if h.Events != nil {
			cat.GET("/events", h.Events.Stream)
		}

		cat.POST("/sessions", h.Session.CreateSession)
		cat.GET("/sessions/:id", h.Session.GetSession)
		cat.DELETE("/sessions/:id", h.Session.DeleteSession)
		cat.PUT("/sessions/:id/search", h.Session.SetSearch)
		cat.PUT("/sessions/:id/price-range", h.Session.SetPriceRange)
		cat.PUT("/sessions/:id/availability", h.Session.SetAvailability)
		cat.PUT("/sessions/:id/sort", h.Session.SetSort)
		cat.PUT("/sessions/:id/page", h.Session.SetPage)
		cat.PUT("/sessions/:id/page-size", h.Session.SetPageSize)
		cat.POST("/sessions/:id/categories/:categoryId/toggle", h.Session.ToggleCategory)
		cat.DELETE("/sessions/:id/filters", h.Session.ClearFilters)
	}

	if adminAuth != nil {
		admin := router.Group("/v1/admin")
		admin.Use(adminAuth)
		{
			admin.POST("/catalog/refresh", h.Admin.RefreshCatalog)
		}
	}
}
