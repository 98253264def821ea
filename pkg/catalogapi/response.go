package catalogapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// ProductListResponse is the paged envelope returned by the catalog
// endpoint. Some deployments return a bare JSON array instead; the client
// handles both.
type ProductListResponse struct {
	Data []ProductItem `json:"data"`
	Meta *struct {
		Pagination *struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	} `json:"meta,omitempty"`
}

// ProductItem is one product as sent by the catalog service. Numeric and
// time fields are lenient: they accept numbers or strings and decode to
// zero when unparsable.
type ProductItem struct {
	ID           FlexString `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Model        string     `json:"model"`
	ItemCode     string     `json:"itemCode"`
	Tags         FlexText   `json:"tags"`
	Category1    string     `json:"category1"`
	Category2    string     `json:"category2"`
	Category3    string     `json:"category3"`
	Price        FlexNumber `json:"price"`
	Availability FlexNumber `json:"availability"`
	Rating       FlexNumber `json:"rating"`
	ImageURL     string     `json:"imageUrl"`
	CreatedAt    FlexTime   `json:"createdAt"`
}

// ToProduct normalises the item into the engine's product record.
func (it ProductItem) ToProduct() models.Product {
	return models.Product{
		ID:           string(it.ID),
		Name:         strings.TrimSpace(it.Name),
		Description:  it.Description,
		Model:        strings.TrimSpace(it.Model),
		ItemCode:     strings.TrimSpace(it.ItemCode),
		Tags:         string(it.Tags),
		Category1:    strings.TrimSpace(it.Category1),
		Category2:    strings.TrimSpace(it.Category2),
		Category3:    strings.TrimSpace(it.Category3),
		Price:        it.Price.Float64(),
		Availability: it.Availability.Int(),
		Rating:       it.Rating.Float64(),
		ImageURL:     it.ImageURL,
		CreatedAt:    time.Time(it.CreatedAt),
	}
}

// FlexNumber is a non-negative decimal decoded from a JSON number or
// numeric string. Anything else decodes to zero.
type FlexNumber struct {
	decimal.Decimal
}

// UnmarshalJSON never fails; unparsable input leaves the value at zero.
func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	n.Decimal = decimal.Zero
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil
	}
	n.Decimal = d
	return nil
}

// Float64 returns the value as a finite float.
func (n FlexNumber) Float64() float64 {
	f := n.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Int returns the integer part, saturating at MaxInt32.
func (n FlexNumber) Int() int {
	i := n.IntPart()
	if i < 0 {
		return 0
	}
	return int(min(i, math.MaxInt32))
}

// FlexString accepts a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	*s = FlexString(b)
	return nil
}

// FlexText accepts free text as a string or an array of strings, which is
// joined with ", ".
type FlexText string

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		var parts []string
		if err := json.Unmarshal(b, &parts); err != nil {
			return nil
		}
		*t = FlexText(strings.Join(parts, ", "))
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*t = FlexText(v)
	return nil
}

// FlexTime accepts RFC 3339, "2006-01-02 15:04:05", a bare date, or unix
// seconds / milliseconds. Unparsable input decodes to the zero time.
type FlexTime time.Time

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(b []byte) error {
	*t = FlexTime{}
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(unq)); err == nil {
				*t = FlexTime(ts)
				return nil
			}
		}
		raw = unq
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
		// Values past year 2286 in seconds are taken as milliseconds.
		if n > 1e10 {
			*t = FlexTime(time.UnixMilli(n).UTC())
		} else {
			*t = FlexTime(time.Unix(n, 0).UTC())
		}
	}
	return nil
}
