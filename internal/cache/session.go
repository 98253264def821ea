package cache

import (
	"time"

	"github.com/GTDGit/gtd_catalog/internal/catalog"
)

// Session is the stored browse state of one catalog session.
type Session struct {
	ID       string                 `json:"id"`
	Criteria catalog.FilterCriteria `json:"criteria"`
	// Bounds are the snapshot price bounds the criteria were last built
	// against; a range still equal to them follows the next snapshot.
	Bounds    catalog.PriceRange `json:"bounds"`
	Version   int64              `json:"version"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
