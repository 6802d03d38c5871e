// file: internal/database/products.go
// version: 1.0.0
// guid: c5541622-3abd-4f55-8e03-14233ef6c289

package database

import (
	"crypto/rand"
	"errors"
	"sort"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("not found")

// Product is a catalog listing.
type Product struct {
	ID          string    `json:"id"` // ULID
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	SellerID    string    `json:"seller_id,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Model       string    `json:"model,omitempty"`
	Images      []string  `json:"images,omitempty"`
	IsSold      bool      `json:"is_sold"`
	CreatedAt   time.Time `json:"created_at"`
}

// BrandName returns the product brand or "" when absent.
func BrandName(p Product) string {
	if p.Brand == nil {
		return ""
	}
	return *p.Brand
}

// ProductFilter holds the non-brand listing criteria.
type ProductFilter struct {
	Category  string   // case-insensitive contains
	MinPrice  *float64 // inclusive
	MaxPrice  *float64 // inclusive
	Condition string   // exact
	Search    string   // case-insensitive contains over title, description, brand
	IsSold    *bool
	Limit     int // 0 means no limit
	Offset    int
}

// Matches reports whether p satisfies every criterion except paging.
func (f ProductFilter) Matches(p Product) bool {
	if f.Category != "" && !containsFold(p.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Condition != "" && p.Condition != f.Condition {
		return false
	}
	if f.IsSold != nil && p.IsSold != *f.IsSold {
		return false
	}
	if f.Search != "" &&
		!containsFold(p.Title, f.Search) &&
		!containsFold(p.Description, f.Search) &&
		!containsFold(BrandName(p), f.Search) {
		return false
	}
	return true
}

// apply filters, orders newest first (ties by descending ID, as the SQL
// backends do) and pages an in-memory product list.
func (f ProductFilter) apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Product{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// prepareProduct fills the ID and creation time of a new product.
func prepareProduct(p *Product) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.ID == "" {
		p.ID = ulid.MustNew(ulid.Timestamp(p.CreatedAt), rand.Reader).String()
	}
	if p.Brand != nil {
		trimmed := strings.TrimSpace(*p.Brand)
		if trimmed == "" {
			p.Brand = nil
		} else {
			p.Brand = &trimmed
		}
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
