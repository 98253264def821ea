package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/catalog"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CatalogHandler serves stateless catalog browsing.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetCategories returns the category forest and the filter panel summary.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	cats, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("catalog_version", cats.Version)
	utils.Success(c, http.StatusOK, "Categories retrieved successfully", cats)
}

// GetProducts returns one page of filtered and sorted products.
//
// Query: q, category (repeatable or comma-separated), minPrice, maxPrice,
// availability, sort, page, limit.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	q, err := parseBrowseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.catalogService.Browse(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", res, pagination(res.Page), res.Version)
}

func parseBrowseQuery(c *gin.Context) (service.BrowseQuery, error) {
	var q service.BrowseQuery
	var err error

	q.Search = c.Query("q")
	for _, raw := range c.QueryArray("category") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.CategoryIDs = append(q.CategoryIDs, catalog.NodeID(id))
			}
		}
	}
	if q.MinPrice, err = parsePrice(c.Query("minPrice")); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(c.Query("maxPrice")); err != nil {
		return q, err
	}
	if q.Availability, err = catalog.ParseAvailability(c.Query("availability")); err != nil {
		return q, err
	}
	if q.SortKey, err = catalog.ParseSortKey(c.Query("sort")); err != nil {
		return q, err
	}
	if q.Page, err = parseInt(c.Query("page")); err != nil {
		return q, err
	}
	if q.PageSize, err = parseInt(c.Query("limit")); err != nil {
		return q, err
	}
	return q, nil
}

func parsePrice(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, utils.ErrInvalidPriceRange
	}
	return &f, nil
}

func parseInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, utils.ErrInvalidPage
	}
	return n, nil
}

func pagination(p catalog.Page) utils.Pagination {
	return utils.Pagination{
		Page:       p.Page,
		Limit:      p.PageSize,
		TotalItems: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}
