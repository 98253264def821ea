package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	catalogService *service.CatalogService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(catalogService *service.CatalogService) *AdminHandler {
	return &AdminHandler{catalogService: catalogService}
}

// RefreshCatalog handles POST /v1/admin/catalog/refresh.
func (h *AdminHandler) RefreshCatalog(c *gin.Context) {
	snap, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("user_id", c.GetString("user_id")).Int64("version", snap.Version).Msg("catalog refreshed by admin")

	c.Set("catalog_version", snap.Version)
	utils.Success(c, http.StatusOK, "Catalog refreshed", gin.H{
		"version":    snap.Version,
		"products":   len(snap.Products),
		"categories": len(snap.Nodes),
		"loadedAt":   snap.LoadedAt,
	})
}
