package catalog

import (
	"slices"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Page is one slice of a filtered, sorted result.
type Page struct {
	Items      []models.Product `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
}

// Paginate slices products into the requested 1-based page. TotalPages is
// at least 1. A page past the end yields no items; clamping is up to the
// caller. Page < 1 is treated as 1 and pageSize < 1 as DefaultPageSize.
func Paginate(products []models.Product, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(products)
	totalPages := max((total+pageSize-1)/pageSize, 1)

	items := []models.Product{}
	if page <= totalPages {
		if start := (page - 1) * pageSize; start < total {
			items = slices.Clone(products[start:min(start+pageSize, total)])
		}
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
