package catalog

// ChipKind names the facet a chip removes.
type ChipKind string

const (
	ChipSearch       ChipKind = "search"
	ChipCategory     ChipKind = "category"
	ChipAvailability ChipKind = "availability"
)

// Chip is a removable active-filter marker.
type Chip struct {
	Kind  ChipKind `json:"kind"`
	Value string   `json:"value"`
	Label string   `json:"label"`
}

// Chips lists the active filters of criteria. Category labels resolve to
// the node name; ids no longer present in idx show the raw id.
func Chips(criteria *FilterCriteria, idx Index) []Chip {
	chips := []Chip{}
	if q := criteria.SearchQuery; q != "" {
		chips = append(chips, Chip{Kind: ChipSearch, Value: q, Label: q})
	}
	for _, id := range criteria.SelectedCategoryIDs {
		label := string(id)
		if n, ok := idx[id]; ok {
			label = n.Name
		}
		chips = append(chips, Chip{Kind: ChipCategory, Value: string(id), Label: label})
	}
	if a := criteria.Availability; a != "" && a != AvailabilityAll {
		chips = append(chips, Chip{Kind: ChipAvailability, Value: string(a), Label: string(a)})
	}
	return chips
}

// Summary describes the filter panel for a snapshot.
type Summary struct {
	InStock    int            `json:"inStock"`
	OutOfStock int            `json:"outOfStock"`
	PriceRange PriceRange     `json:"priceRange"`
	NodeCounts map[NodeID]int `json:"nodeCounts"`
}

// Summarize counts stock states and the products under each node. A product
// counts once for every node on its category path.
func Summarize(s *Snapshot) Summary {
	sum := Summary{
		PriceRange: s.Bounds,
		NodeCounts: make(map[NodeID]int, len(s.Nodes)),
	}
	for i := range s.Products {
		p := &s.Products[i]
		if p.InStock() {
			sum.InStock++
		} else {
			sum.OutOfStock++
		}
		path := p.CategoryPath()
		for depth := 1; depth <= len(path); depth++ {
			sum.NodeCounts[newNode(path[:depth]).ID]++
		}
	}
	return sum
}
