package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	return NewController(NewSnapshot(branchyProducts(), 1), 2, 50)
}

func TestController_Defaults(t *testing.T) {
	c := newTestController(t)

	crit := c.Criteria()
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, "", crit.SearchQuery)
	assert.Empty(t, crit.SelectedCategoryIDs)
	assert.Equal(t, PriceRange{Min: 0, Max: 450}, crit.PriceRange)
	assert.Equal(t, AvailabilityAll, crit.Availability)
	assert.Equal(t, SortFeatured, crit.SortKey)
	assert.Equal(t, 1, crit.Page)
	assert.Equal(t, 2, crit.PageSize)
}

func TestController_StateMachine(t *testing.T) {
	c := newTestController(t)

	c.SetSearchQuery("camera")
	assert.Equal(t, StateFiltering, c.State())

	c.Result()
	assert.Equal(t, StatePaginated, c.State())

	c.SetPage(2)
	assert.Equal(t, StateFiltered, c.State())
	c.Result()
	assert.Equal(t, StatePaginated, c.State())
}

func TestController_MutationsResetPage(t *testing.T) {
	mutations := map[string]func(c *Controller){
		"search":       func(c *Controller) { c.SetSearchQuery("x") },
		"category":     func(c *Controller) { c.ToggleCategory(id("CCTV")) },
		"price":        func(c *Controller) { c.SetPriceRange(PriceRange{Min: 1, Max: 2}) },
		"availability": func(c *Controller) { c.SetAvailability(AvailabilityInStock) },
		"sort":         func(c *Controller) { c.SetSortKey(SortName) },
		"page size":    func(c *Controller) { c.SetPageSize(3) },
		"clear":        func(c *Controller) { c.ClearAllFilters() },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			c := newTestController(t)
			c.SetPage(3)
			require.Equal(t, 3, c.Criteria().Page)

			mutate(c)

			assert.Equal(t, 1, c.Criteria().Page)
			assert.Equal(t, StateFiltering, c.State())
		})
	}
}

func TestController_SetPageReusesFilteredSet(t *testing.T) {
	c := newTestController(t)
	c.SetSortKey(SortPriceLow)

	first := c.Result()
	require.Equal(t, 6, first.TotalCount)
	require.Equal(t, 3, first.TotalPages)

	var all []string
	all = append(all, ids(first.Items)...)
	for page := 2; page <= first.TotalPages; page++ {
		c.SetPage(page)
		all = append(all, ids(c.Result().Items)...)
	}
	assert.Equal(t, []string{"f", "e", "b", "a", "c", "d"}, all)
}

func TestController_ToggleCategory(t *testing.T) {
	c := newTestController(t)

	c.ToggleCategory(id("CCTV", "Camera"))
	c.ToggleCategory(id("Access Control", "Reader"))
	res := c.Result()
	assert.ElementsMatch(t, []string{"a", "b", "e"}, ids(append(res.Items, c.nextPages()...)))

	c.ToggleCategory(id("CCTV", "Camera"))
	assert.Equal(t, []NodeID{id("Access Control", "Reader")}, c.Criteria().SelectedCategoryIDs)
}

// nextPages collects the items of every page after the current one.
func (c *Controller) nextPages() []models.Product {
	var out []models.Product
	start := c.Criteria().Page
	for page := start + 1; page <= c.Result().TotalPages; page++ {
		c.SetPage(page)
		out = append(out, c.Result().Items...)
	}
	return out
}

func TestController_SetPriceRangeNormalises(t *testing.T) {
	c := newTestController(t)

	c.SetPriceRange(PriceRange{Min: 300, Max: -5})

	assert.Equal(t, PriceRange{Min: 0, Max: 300}, c.Criteria().PriceRange)
}

func TestController_SetPageSizeClamps(t *testing.T) {
	c := newTestController(t)

	c.SetPageSize(500)
	assert.Equal(t, 50, c.Criteria().PageSize)

	c.SetPageSize(0)
	assert.Equal(t, 2, c.Criteria().PageSize)
}

func TestController_ClearAllFiltersRestoresDefaults(t *testing.T) {
	c := newTestController(t)
	defaults := c.Criteria()

	c.SetSearchQuery("dome")
	c.ToggleCategory(id("CCTV"))
	c.SetPriceRange(PriceRange{Min: 10, Max: 20})
	c.SetAvailability(AvailabilityOutOfStock)
	c.SetSortKey(SortRating)
	c.SetPage(4)

	c.ClearAllFilters()

	got := c.Criteria()
	assert.Equal(t, "", got.SearchQuery)
	assert.Empty(t, got.SelectedCategoryIDs)
	assert.Equal(t, defaults.PriceRange, got.PriceRange)
	assert.Equal(t, AvailabilityAll, got.Availability)
	assert.Equal(t, SortFeatured, got.SortKey)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, defaults, got)
}

func TestController_SetSnapshotDiscardsCacheAndFollowsBounds(t *testing.T) {
	c := newTestController(t)
	c.ToggleCategory(id("CCTV"))
	require.Equal(t, 4, c.Result().TotalCount)

	// Refetch drops the CCTV branch and raises the price ceiling.
	next := NewSnapshot([]models.Product{
		{ID: "z", Name: "Turnstile", Category1: "Access Control", Price: 999.5, Availability: 1},
	}, 2)
	c.SetSnapshot(next)

	assert.Equal(t, StateFiltering, c.State())
	assert.Equal(t, PriceRange{Max: 1000}, c.Criteria().PriceRange)

	// The stale selection is vacuous now.
	res := c.Result()
	assert.Equal(t, 0, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
	require.Len(t, res.Chips, 1)
	assert.Equal(t, string(id("CCTV")), res.Chips[0].Label)
}

func TestController_SetSnapshotKeepsCustomPriceRange(t *testing.T) {
	c := newTestController(t)
	c.SetPriceRange(PriceRange{Min: 10, Max: 100})

	c.SetSnapshot(NewSnapshot(nil, 2))

	assert.Equal(t, PriceRange{Min: 10, Max: 100}, c.Criteria().PriceRange)
}

func TestController_Restore(t *testing.T) {
	c := newTestController(t)

	c.Restore(FilterCriteria{
		SelectedCategoryIDs: []NodeID{id("Access Control")},
		PriceRange:          PriceRange{Min: 0, Max: 1000},
		Page:                0,
		PageSize:            1,
	})

	crit := c.Criteria()
	assert.Equal(t, 1, crit.Page)
	assert.Equal(t, AvailabilityAll, crit.Availability)
	assert.Equal(t, SortFeatured, crit.SortKey)

	res := c.Result()
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
}
