package response

import (
	"github.com/shopspring/decimal"
)

// LineItem is one cart line as reconciled from the commerce API. A line is
// identified by the pair (ProductID, BrandName).
type LineItem struct {
	ProductID   string          `json:"productId"`
	BrandName   string          `json:"brandName"`
	DisplayName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Images      []string        `json:"productImages,omitempty"`
}

// Key returns the composite identity of the line.
func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, BrandName: l.BrandName}
}

// LineTotal is UnitPrice multiplied by Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type LineKey struct {
	ProductID string
	BrandName string
}

type Cart struct {
	Items []LineItem `json:"items"`
}

// Find returns the line matching key.
func (c Cart) Find(key LineKey) (LineItem, bool) {
	for _, item := range c.Items {
		if item.Key() == key {
			return item, true
		}
	}
	return LineItem{}, false
}
