package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// maxWebhookBody caps the webhook payload size.
const maxWebhookBody = 64 << 10

// CatalogWebhookPayload is the change notification sent by the catalog
// service. Only the event name is inspected.
type CatalogWebhookPayload struct {
	Event string `json:"event"`
}

// WebhookHandler handles change notifications from the upstream catalog.
type WebhookHandler struct {
	catalogService *service.CatalogService
	webhookSecret  string
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(catalogService *service.CatalogService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{catalogService: catalogService, webhookSecret: webhookSecret}
}

// HandleCatalogWebhook handles POST /webhook/catalog. The body must carry a
// hex HMAC-SHA256 signature in X-Signature.
func (h *WebhookHandler) HandleCatalogWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid body")
		return
	}

	if !utils.VerifySignature(body, c.GetHeader("X-Signature"), h.webhookSecret) {
		log.Warn().Str("ip", c.ClientIP()).Msg("catalog webhook signature mismatch")
		utils.Error(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid signature")
		return
	}

	var payload CatalogWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	snap, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("event", payload.Event).Int64("version", snap.Version).Msg("catalog refreshed by webhook")

	c.Set("catalog_version", snap.Version)
	utils.Success(c, http.StatusOK, "Catalog refreshed", gin.H{"received": true, "version": snap.Version})
}
