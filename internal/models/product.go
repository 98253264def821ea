package models

import "time"

// Product represents a catalog record as supplied by the upstream catalog
// service. Price and Availability are already normalised (non-negative,
// zero when the upstream value was missing or unparsable).
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Model        string    `db:"model" json:"model"`
	ItemCode     string    `db:"item_code" json:"itemCode"`
	Tags         string    `db:"tags" json:"tags"`
	Category1    string    `db:"category1" json:"category1,omitempty"`
	Category2    string    `db:"category2" json:"category2,omitempty"`
	Category3    string    `db:"category3" json:"category3,omitempty"`
	Price        float64   `db:"price" json:"price"`
	Availability int       `db:"availability" json:"availability"`
	Rating       float64   `db:"rating" json:"rating"`
	ImageURL     string    `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Availability > 0
}

// CategoryPath returns the contiguous populated prefix of the product's
// category fields. A gap (e.g. category2 empty while category3 is set) ends
// the path at the last contiguous level.
func (p *Product) CategoryPath() []string {
	path := make([]string, 0, 3)
	for _, c := range []string{p.Category1, p.Category2, p.Category3} {
		if c == "" {
			break
		}
		path = append(path, c)
	}
	return path
}
