package catalog

import (
	"strings"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Predicate is one facet of the filter pipeline.
type Predicate func(p *models.Product) bool

// Stages returns the pipeline predicates for criteria, cheapest first.
// Facets are AND-combined, so their order only affects cost.
func Stages(criteria *FilterCriteria, nodes []*CategoryNode, idx Index) []Predicate {
	var stages []Predicate

	if criteria.Availability == AvailabilityInStock || criteria.Availability == AvailabilityOutOfStock {
		stages = append(stages, availabilityPredicate(criteria.Availability))
	}
	stages = append(stages, priceRangePredicate(criteria.PriceRange))

	if selected := criteria.Selected(); len(selected) > 0 {
		resolved := ResolveDescendants(selected, nodes)
		stages = append(stages, func(p *models.Product) bool {
			return MatchesCategories(p, resolved, idx)
		})
	}
	if q := criteria.Query(); q != "" {
		stages = append(stages, searchPredicate(q))
	}
	return stages
}

// ApplyFilters returns the products accepted by every facet of criteria,
// in input order.
func ApplyFilters(products []models.Product, criteria *FilterCriteria, nodes []*CategoryNode) []models.Product {
	return applyStages(products, Stages(criteria, nodes, IndexNodes(nodes)))
}

func applyStages(products []models.Product, stages []Predicate) []models.Product {
	out := make([]models.Product, 0, len(products))
next:
	for i := range products {
		for _, accept := range stages {
			if !accept(&products[i]) {
				continue next
			}
		}
		out = append(out, products[i])
	}
	return out
}

// searchPredicate matches q, already trimmed and lower-cased, as a substring
// of any searchable field.
func searchPredicate(q string) Predicate {
	return func(p *models.Product) bool {
		for _, field := range []string{
			p.Name, p.Description, p.Model, p.ItemCode,
			p.Category1, p.Category2, p.Category3, p.Tags,
		} {
			if field != "" && strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

func priceRangePredicate(r PriceRange) Predicate {
	return func(p *models.Product) bool {
		return r.Contains(p.Price)
	}
}

func availabilityPredicate(mode Availability) Predicate {
	return func(p *models.Product) bool {
		switch mode {
		case AvailabilityInStock:
			return p.Availability > 0
		case AvailabilityOutOfStock:
			return p.Availability <= 0
		}
		return true
	}
}
