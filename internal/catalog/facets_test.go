package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChips(t *testing.T) {
	snap := NewSnapshot(branchyProducts(), 1)
	criteria := DefaultCriteria(snap.Bounds, 10)
	criteria.SearchQuery = "dome"
	criteria.SelectedCategoryIDs = []NodeID{id("CCTV", "Camera"), "missing"}
	criteria.Availability = AvailabilityOutOfStock

	chips := Chips(&criteria, snap.Index)

	require.Len(t, chips, 4)
	assert.Equal(t, Chip{Kind: ChipSearch, Value: "dome", Label: "dome"}, chips[0])
	assert.Equal(t, Chip{Kind: ChipCategory, Value: string(id("CCTV", "Camera")), Label: "Camera"}, chips[1])
	assert.Equal(t, Chip{Kind: ChipCategory, Value: "missing", Label: "missing"}, chips[2])
	assert.Equal(t, Chip{Kind: ChipAvailability, Value: "outOfStock", Label: "outOfStock"}, chips[3])
}

func TestChips_NoActiveFilters(t *testing.T) {
	criteria := DefaultCriteria(PriceRange{}, 10)

	assert.Empty(t, Chips(&criteria, Index{}))
}

func TestSummarize(t *testing.T) {
	sum := Summarize(NewSnapshot(branchyProducts(), 1))

	assert.Equal(t, 5, sum.InStock)
	assert.Equal(t, 1, sum.OutOfStock)
	assert.Equal(t, PriceRange{Min: 0, Max: 450}, sum.PriceRange)
	assert.Equal(t, 4, sum.NodeCounts[id("CCTV")])
	assert.Equal(t, 2, sum.NodeCounts[id("CCTV", "Camera")])
	assert.Equal(t, 1, sum.NodeCounts[id("Access Control", "Camera")])
	assert.Equal(t, 1, sum.NodeCounts[id("CCTV", "Camera", "Bullet")])
}

func TestNewSnapshot_Empty(t *testing.T) {
	snap := NewSnapshot(nil, 1)

	assert.Empty(t, snap.Tree)
	assert.Equal(t, PriceRange{}, snap.Bounds)

	criteria := DefaultCriteria(snap.Bounds, 10)
	res := snap.Browse(&criteria)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.TotalPages)
}

func TestParseEnums(t *testing.T) {
	a, err := ParseAvailability("in_stock")
	require.NoError(t, err)
	assert.Equal(t, AvailabilityInStock, a)

	a, err = ParseAvailability("")
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAll, a)

	_, err = ParseAvailability("sometimes")
	assert.Error(t, err)

	k, err := ParseSortKey("priceHigh")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, k)

	_, err = ParseSortKey("random")
	assert.Error(t, err)
}
