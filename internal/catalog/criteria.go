package catalog

import (
	"slices"
	"strings"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// Availability enumerates the stock facet.
type Availability string

const (
	AvailabilityAll        Availability = "all"
	AvailabilityInStock    Availability = "inStock"
	AvailabilityOutOfStock Availability = "outOfStock"
)

// ParseAvailability accepts the camelCase names and their snake_case
// spellings. Empty input means "all".
func ParseAvailability(s string) (Availability, error) {
	switch strings.TrimSpace(s) {
	case "", "all":
		return AvailabilityAll, nil
	case "inStock", "in_stock":
		return AvailabilityInStock, nil
	case "outOfStock", "out_of_stock":
		return AvailabilityOutOfStock, nil
	}
	return "", utils.ErrInvalidAvailability
}

// SortKey enumerates the sort policies.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "priceLow"
	SortPriceHigh SortKey = "priceHigh"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

// ParseSortKey parses a sort key. Empty input means "featured".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortName:
		return k, nil
	}
	return "", utils.ErrInvalidSortKey
}

// PriceRange is a closed interval [Min, Max].
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize clamps negative bounds to zero and swaps reversed bounds.
func (r PriceRange) Normalize() PriceRange {
	r.Min = max(r.Min, 0)
	r.Max = max(r.Max, 0)
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// Contains reports whether price lies within the range, inclusive.
func (r PriceRange) Contains(price float64) bool {
	return r.Min <= price && price <= r.Max
}

// Default paging limits.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// FilterCriteria is the complete browse state for one catalog view.
type FilterCriteria struct {
	SearchQuery         string       `json:"searchQuery"`
	SelectedCategoryIDs []NodeID     `json:"selectedCategoryIds"`
	PriceRange          PriceRange   `json:"priceRange"`
	Availability        Availability `json:"availability"`
	SortKey             SortKey      `json:"sortKey"`
	Page                int          `json:"page"`
	PageSize            int          `json:"pageSize"`
}

// DefaultCriteria returns the criteria a view starts with.
func DefaultCriteria(bounds PriceRange, pageSize int) FilterCriteria {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return FilterCriteria{
		SelectedCategoryIDs: []NodeID{},
		PriceRange:          bounds,
		Availability:        AvailabilityAll,
		SortKey:             SortFeatured,
		Page:                1,
		PageSize:            pageSize,
	}
}

// Query returns the trimmed, lower-cased search query.
func (c *FilterCriteria) Query() string {
	return strings.ToLower(strings.TrimSpace(c.SearchQuery))
}

// Selected returns the selected category ids as a set.
func (c *FilterCriteria) Selected() IDSet {
	return NewIDSet(c.SelectedCategoryIDs...)
}

// Clone returns a deep copy.
func (c FilterCriteria) Clone() FilterCriteria {
	c.SelectedCategoryIDs = slices.Clone(c.SelectedCategoryIDs)
	if c.SelectedCategoryIDs == nil {
		c.SelectedCategoryIDs = []NodeID{}
	}
	return c
}
