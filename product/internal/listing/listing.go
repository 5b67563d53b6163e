// Package listing filters, orders and pages a catalog already fetched in full.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Alturino/medkit/product/pkg/response"
)

const (
	SortByName      = "name"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
	SortByRating    = "rating"
)

type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Filter keeps products whose name or category contains term, ignoring case.
func Filter(products []response.Product, term string) []response.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(products)
	}
	filtered := make([]response.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.ProductName), term) ||
			strings.Contains(strings.ToLower(product.Category), term) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// Sort returns a sorted copy. Unknown keys sort by name. Prices compare on the
// first brand.
func Sort(products []response.Product, by string) []response.Product {
	sorted := slices.Clone(products)
	var compare func(a, b response.Product) int
	switch by {
	case SortByPriceLow:
		compare = func(a, b response.Product) int { return a.ListPrice().Cmp(b.ListPrice()) }
	case SortByPriceHigh:
		compare = func(a, b response.Product) int { return b.ListPrice().Cmp(a.ListPrice()) }
	case SortByRating:
		compare = func(a, b response.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	default:
		compare = func(a, b response.Product) int {
			return cmp.Compare(strings.ToLower(a.ProductName), strings.ToLower(b.ProductName))
		}
	}
	slices.SortStableFunc(sorted, compare)
	return sorted
}

// Paginate returns the 1-based page of products. A page past the end is empty.
func Paginate(products []response.Product, page int, limit int) ([]response.Product, Page) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(products)
		if limit == 0 {
			limit = 1
		}
	}
	meta := Page{
		Page:       page,
		Limit:      limit,
		Total:      len(products),
		TotalPages: (len(products) + limit - 1) / limit,
	}

	start := (page - 1) * limit
	if start >= len(products) {
		return []response.Product{}, meta
	}
	end := min(start+limit, len(products))
	return slices.Clone(products[start:end]), meta
}
