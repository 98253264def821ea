package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Sort returns products ordered by key. The input is not modified and ties
// keep their input order. Unknown keys fall back to featured.
func Sort(products []models.Product, key SortKey) []models.Product {
	out := slices.Clone(products)

	var less func(a, b models.Product) int
	switch key {
	case SortPriceLow:
		less = func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceHigh:
		less = func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRating:
		less = func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortName:
		// Collator keeps scratch buffers; one per call.
		col := collate.New(language.English)
		less = func(a, b models.Product) int { return col.CompareString(a.Name, b.Name) }
	default:
		less = func(a, b models.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}

	slices.SortStableFunc(out, less)
	return out
}
