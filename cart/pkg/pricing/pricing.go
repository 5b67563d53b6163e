// Package pricing derives the order totals of a cart snapshot. Nothing is
// cached: every figure is recomputed from the items passed in.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/medkit/cart/pkg/response"
)

var (
	DefaultShippingFee = decimal.NewFromInt(1500)
	DefaultTaxRate     = decimal.RequireFromString("0.08")
)

// displayPlaces is the number of minor-unit digits shown to the shopper.
const displayPlaces = 2

type Calculator struct {
	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
}

func NewCalculator(shippingFee, taxRate decimal.Decimal) Calculator {
	return Calculator{ShippingFee: shippingFee, TaxRate: taxRate}
}

func Default() Calculator {
	return NewCalculator(DefaultShippingFee, DefaultTaxRate)
}

func (Calculator) TotalItems(items []response.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func (Calculator) Subtotal(items []response.LineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Shipping is the flat fee for any non-empty order and zero otherwise.
func (calc Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() {
		return calc.ShippingFee
	}
	return decimal.Zero
}

func (calc Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(calc.TaxRate)
}

func (calc Calculator) Total(items []response.LineItem) decimal.Decimal {
	subtotal := calc.Subtotal(items)
	return subtotal.Add(calc.Shipping(subtotal)).Add(calc.Tax(subtotal))
}

type Breakdown struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

func (calc Calculator) Breakdown(items []response.LineItem) Breakdown {
	subtotal := calc.Subtotal(items)
	shipping := calc.Shipping(subtotal)
	tax := calc.Tax(subtotal)
	return Breakdown{
		TotalItems: calc.TotalItems(items),
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		Total:      subtotal.Add(shipping).Add(tax),
	}
}

// DisplayBreakdown holds the figures rounded half away from zero to the
// currency's minor unit. Rounding happens here only, so the displayed total
// can differ by one minor unit from the sum of the displayed parts.
type DisplayBreakdown struct {
	TotalItems int    `json:"totalItems"`
	Subtotal   string `json:"subtotal"`
	Shipping   string `json:"shipping"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
}

func (b Breakdown) Display() DisplayBreakdown {
	return DisplayBreakdown{
		TotalItems: b.TotalItems,
		Subtotal:   b.Subtotal.StringFixed(displayPlaces),
		Shipping:   b.Shipping.StringFixed(displayPlaces),
		Tax:        b.Tax.StringFixed(displayPlaces),
		Total:      b.Total.StringFixed(displayPlaces),
	}
}
