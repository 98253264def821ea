package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// SessionHandler exposes stateful browsing: each session owns a filter
// criteria that is changed one setter at a time.
type SessionHandler struct {
	catalogService *service.CatalogService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(catalogService *service.CatalogService) *SessionHandler {
	return &SessionHandler{catalogService: catalogService}
}

type searchRequest struct {
	Query string `json:"query"`
}

type priceRangeRequest struct {
	Min *float64 `json:"min" binding:"required"`
	Max *float64 `json:"max" binding:"required"`
}

type availabilityRequest struct {
	Availability string `json:"availability" binding:"required"`
}

type sortRequest struct {
	SortKey string `json:"sortKey" binding:"required"`
}

type pageRequest struct {
	Page *int `json:"page" binding:"required"`
}

type pageSizeRequest struct {
	PageSize *int `json:"pageSize" binding:"required"`
}

// CreateSession handles POST /v1/catalog/sessions.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	view, err := h.catalogService.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respondSession(c, http.StatusCreated, "Session created", view)
}

// GetSession handles GET /v1/catalog/sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.catalogService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respondSession(c, http.StatusOK, "Session retrieved", view)
}

// DeleteSession handles DELETE /v1/catalog/sessions/:id.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.catalogService.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Session deleted", nil)
}

// SetSearch handles PUT /v1/catalog/sessions/:id/search.
func (h *SessionHandler) SetSearch(c *gin.Context) {
	var req searchRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, service.SetSearch(req.Query))
}

// SetPriceRange handles PUT /v1/catalog/sessions/:id/price-range.
func (h *SessionHandler) SetPriceRange(c *gin.Context) {
	var req priceRangeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, service.SetPriceRange(catalog.PriceRange{Min: *req.Min, Max: *req.Max}))
}

// SetAvailability handles PUT /v1/catalog/sessions/:id/availability.
func (h *SessionHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := catalog.ParseAvailability(req.Availability)
	if err != nil {
		writeError(c, err)
		return
	}
	h.mutate(c, service.SetAvailability(a))
}

// SetSort handles PUT /v1/catalog/sessions/:id/sort.
func (h *SessionHandler) SetSort(c *gin.Context) {
	var req sortRequest
	if !bindJSON(c, &req) {
		return
	}
	k, err := catalog.ParseSortKey(req.SortKey)
	if err != nil {
		writeError(c, err)
		return
	}
	h.mutate(c, service.SetSort(k))
}

// SetPage handles PUT /v1/catalog/sessions/:id/page.
func (h *SessionHandler) SetPage(c *gin.Context) {
	var req pageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, service.SetPage(*req.Page))
}

// SetPageSize handles PUT /v1/catalog/sessions/:id/page-size.
func (h *SessionHandler) SetPageSize(c *gin.Context) {
	var req pageSizeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, service.SetPageSize(*req.PageSize))
}

// ToggleCategory handles POST /v1/catalog/sessions/:id/categories/:categoryId/toggle.
func (h *SessionHandler) ToggleCategory(c *gin.Context) {
	h.mutate(c, service.ToggleCategory(catalog.NodeID(c.Param("categoryId"))))
}

// ClearFilters handles DELETE /v1/catalog/sessions/:id/filters.
func (h *SessionHandler) ClearFilters(c *gin.Context) {
	h.mutate(c, service.ClearFilters())
}

func (h *SessionHandler) mutate(c *gin.Context, m service.Mutation) {
	view, err := h.catalogService.MutateSession(c.Request.Context(), c.Param("id"), m)
	if err != nil {
		writeError(c, err)
		return
	}
	respondSession(c, http.StatusOK, "Session updated", view)
}

func respondSession(c *gin.Context, code int, message string, view *service.SessionView) {
	utils.SuccessWithPagination(c, code, message, view, pagination(view.Page), view.Version)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}
