package catalog

import (
	"slices"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// State is the browse lifecycle position of a Controller.
type State int

const (
	StateIdle State = iota
	StateFiltering
	StateFiltered
	StatePaginated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFiltering:
		return "filtering"
	case StateFiltered:
		return "filtered"
	case StatePaginated:
		return "paginated"
	}
	return "unknown"
}

// Controller owns a FilterCriteria against a snapshot. Every setter except
// SetPage resets the page to 1 and invalidates the cached filtered result;
// SetPage re-slices the cached result.
//
// A Controller is not safe for concurrent use. Results it returns are fresh
// slices and may be shared freely.
type Controller struct {
	snap        *Snapshot
	criteria    FilterCriteria
	pageSize    int
	maxPageSize int
	state       State
	filtered    []models.Product
	cached      bool
}

// NewController starts a view over snap with default criteria.
func NewController(snap *Snapshot, pageSize, maxPageSize int) *Controller {
	if maxPageSize < 1 {
		maxPageSize = MaxPageSize
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = min(DefaultPageSize, maxPageSize)
	}
	return &Controller{
		snap:        snap,
		criteria:    DefaultCriteria(snap.Bounds, pageSize),
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
		state:       StateIdle,
	}
}

// Restore replaces the criteria, e.g. with state loaded from a session.
// The cached result is discarded but the page is kept.
func (c *Controller) Restore(criteria FilterCriteria) {
	criteria = criteria.Clone()
	criteria.PriceRange = criteria.PriceRange.Normalize()
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	criteria.PageSize = c.clampPageSize(criteria.PageSize)
	if criteria.Availability == "" {
		criteria.Availability = AvailabilityAll
	}
	if criteria.SortKey == "" {
		criteria.SortKey = SortFeatured
	}
	c.criteria = criteria
	c.invalidate()
}

// Criteria returns a copy of the current criteria.
func (c *Controller) Criteria() FilterCriteria {
	return c.criteria.Clone()
}

// State reports the lifecycle position.
func (c *Controller) State() State {
	return c.state
}

// Snapshot returns the snapshot the controller browses.
func (c *Controller) Snapshot() *Snapshot {
	return c.snap
}

// SetSnapshot switches to a new product set. Any cached result is dropped.
// A price range still at the old default bounds follows the new bounds.
func (c *Controller) SetSnapshot(snap *Snapshot) {
	if c.criteria.PriceRange == c.snap.Bounds {
		c.criteria.PriceRange = snap.Bounds
	}
	c.snap = snap
	c.invalidate()
}

// SetSearchQuery sets the free-text query.
func (c *Controller) SetSearchQuery(q string) {
	c.criteria.SearchQuery = q
	c.mutated()
}

// ToggleCategory selects id, or deselects it if already selected.
func (c *Controller) ToggleCategory(id NodeID) {
	if i := slices.Index(c.criteria.SelectedCategoryIDs, id); i >= 0 {
		c.criteria.SelectedCategoryIDs = slices.Delete(c.criteria.SelectedCategoryIDs, i, i+1)
	} else {
		c.criteria.SelectedCategoryIDs = append(c.criteria.SelectedCategoryIDs, id)
	}
	c.mutated()
}

// SetPriceRange sets the price interval after normalising it.
func (c *Controller) SetPriceRange(r PriceRange) {
	c.criteria.PriceRange = r.Normalize()
	c.mutated()
}

// SetAvailability sets the stock facet.
func (c *Controller) SetAvailability(a Availability) {
	c.criteria.Availability = a
	c.mutated()
}

// SetSortKey sets the sort policy.
func (c *Controller) SetSortKey(k SortKey) {
	c.criteria.SortKey = k
	c.mutated()
}

// SetPageSize sets the page size, capped at the controller maximum.
func (c *Controller) SetPageSize(n int) {
	c.criteria.PageSize = c.clampPageSize(n)
	c.mutated()
}

// SetPage moves to page n (minimum 1) without recomputing the filter.
func (c *Controller) SetPage(n int) {
	c.criteria.Page = max(n, 1)
	if c.cached {
		c.state = StateFiltered
	}
}

// ClearAllFilters restores the default criteria. The page size is kept.
func (c *Controller) ClearAllFilters() {
	c.criteria = DefaultCriteria(c.snap.Bounds, c.criteria.PageSize)
	c.mutated()
}

// Result returns the current page, recomputing the filtered and sorted set
// only when a criterion other than the page changed.
func (c *Controller) Result() Result {
	if !c.cached {
		c.state = StateFiltering
		c.filtered = c.snap.Filter(&c.criteria)
		c.cached = true
		c.state = StateFiltered
	}
	res := Result{
		Page:  Paginate(c.filtered, c.criteria.Page, c.criteria.PageSize),
		Chips: Chips(&c.criteria, c.snap.Index),
	}
	c.state = StatePaginated
	return res
}

func (c *Controller) mutated() {
	c.criteria.Page = 1
	c.invalidate()
}

func (c *Controller) invalidate() {
	c.filtered = nil
	c.cached = false
	c.state = StateFiltering
}

func (c *Controller) clampPageSize(n int) int {
	if n < 1 {
		return c.pageSize
	}
	return min(n, c.maxPageSize)
}
