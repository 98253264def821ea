package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// writeError maps service errors to the API envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrCatalogNotLoaded):
		utils.Error(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet")
	case errors.Is(err, utils.ErrSourceUnavailable):
		utils.Error(c, http.StatusBadGateway, "SOURCE_UNAVAILABLE", "Catalog source is unavailable")
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found or expired")
	case errors.Is(err, utils.ErrInvalidAvailability):
		utils.Error(c, http.StatusBadRequest, "INVALID_AVAILABILITY", "Availability must be one of all, inStock, outOfStock")
	case errors.Is(err, utils.ErrInvalidSortKey):
		utils.Error(c, http.StatusBadRequest, "INVALID_SORT_KEY", "Sort must be one of featured, priceLow, priceHigh, rating, name")
	case errors.Is(err, utils.ErrInvalidPriceRange):
		utils.Error(c, http.StatusBadRequest, "INVALID_PRICE_RANGE", "Price bounds must be numbers")
	case errors.Is(err, utils.ErrInvalidPage):
		utils.Error(c, http.StatusBadRequest, "INVALID_PAGE", "Page and page size must be integers")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("catalog request failed")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
