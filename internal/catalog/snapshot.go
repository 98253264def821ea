package catalog

import (
	"math"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Snapshot is an immutable product set with its derived category tree.
type Snapshot struct {
	Products []models.Product
	Nodes    []*CategoryNode
	Tree     []*CategoryNode
	Index    Index
	Bounds   PriceRange
	Version  int64
	LoadedAt time.Time
}

// NewSnapshot extracts and links the category tree for products. The slice
// is owned by the snapshot afterwards and must not be modified.
func NewSnapshot(products []models.Product, version int64) *Snapshot {
	if products == nil {
		products = []models.Product{}
	}
	nodes := ExtractNodes(products)
	return &Snapshot{
		Products: products,
		Nodes:    nodes,
		Tree:     BuildTree(nodes),
		Index:    IndexNodes(nodes),
		Bounds:   priceBounds(products),
		Version:  version,
		LoadedAt: time.Now(),
	}
}

// priceBounds is [0, ceil(max price)], the range a fresh view starts with.
func priceBounds(products []models.Product) PriceRange {
	var hi float64
	for i := range products {
		hi = max(hi, products[i].Price)
	}
	return PriceRange{Min: 0, Max: math.Ceil(hi)}
}

// Result is one rendered browse response.
type Result struct {
	Page
	Chips []Chip `json:"chips"`
}

// Filter runs the pipeline and the sort policy over the snapshot.
func (s *Snapshot) Filter(criteria *FilterCriteria) []models.Product {
	filtered := applyStages(s.Products, Stages(criteria, s.Nodes, s.Index))
	return Sort(filtered, criteria.SortKey)
}

// Browse filters, sorts and paginates in one pass.
func (s *Snapshot) Browse(criteria *FilterCriteria) Result {
	return Result{
		Page:  Paginate(s.Filter(criteria), criteria.Page, criteria.PageSize),
		Chips: Chips(criteria, s.Index),
	}
}
