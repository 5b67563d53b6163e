package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/medkit/product/pkg/response"
)

func product(id, name, category string, price int64, rating float64) response.Product {
	p := response.Product{ID: id, ProductName: name, Category: category, Rating: rating}
	if price >= 0 {
		p.Brands = []response.Brand{{BrandName: "Acme", Price: decimal.NewFromInt(price)}}
	}
	return p
}

func ids(products []response.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

var catalog = []response.Product{
	product("1", "Stethoscope", "Diagnostics", 4500, 4.2),
	product("2", "bandage roll", "First Aid", 300, 4.8),
	product("3", "Thermometer", "Diagnostics", 1200, 3.9),
	product("4", "Gloves", "Protection", -1, 4.8),
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "given empty term should keep all", term: "", expected: []string{"1", "2", "3", "4"}},
		{name: "given name term should match ignoring case", term: "THERMO", expected: []string{"3"}},
		{name: "given category term should match", term: "diagnostics", expected: []string{"1", "3"}},
		{name: "given unknown term should return none", term: "scalpel", expected: []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ids(Filter(catalog, test.term)))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		by       string
		expected []string
	}{
		{name: "given name should sort alphabetically ignoring case", by: SortByName, expected: []string{"2", "4", "1", "3"}},
		{name: "given unknown key should sort by name", by: "newest", expected: []string{"2", "4", "1", "3"}},
		{name: "given price-low should put products without brands first", by: SortByPriceLow, expected: []string{"4", "2", "3", "1"}},
		{name: "given price-high should sort descending", by: SortByPriceHigh, expected: []string{"1", "3", "2", "4"}},
		{name: "given rating should sort descending and keep ties stable", by: SortByRating, expected: []string{"2", "4", "1", "3"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ids(Sort(catalog, test.by)))
		})
	}

	t.Run("given sort should not reorder input", func(t *testing.T) {
		_ = Sort(catalog, SortByPriceHigh)
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(catalog))
	})
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		limit        int
		expected     []string
		expectedMeta Page
	}{
		{
			name:         "given first page should return first items",
			page:         1,
			limit:        3,
			expected:     []string{"1", "2", "3"},
			expectedMeta: Page{Page: 1, Limit: 3, Total: 4, TotalPages: 2},
		},
		{
			name:         "given last page should return remainder",
			page:         2,
			limit:        3,
			expected:     []string{"4"},
			expectedMeta: Page{Page: 2, Limit: 3, Total: 4, TotalPages: 2},
		},
		{
			name:         "given page past end should return empty",
			page:         5,
			limit:        3,
			expected:     []string{},
			expectedMeta: Page{Page: 5, Limit: 3, Total: 4, TotalPages: 2},
		},
		{
			name:         "given zero page and limit should return everything on page one",
			page:         0,
			limit:        0,
			expected:     []string{"1", "2", "3", "4"},
			expectedMeta: Page{Page: 1, Limit: 4, Total: 4, TotalPages: 1},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, meta := Paginate(catalog, test.page, test.limit)
			assert.Equal(t, test.expected, ids(actual))
			assert.Equal(t, test.expectedMeta, meta)
		})
	}
}
