package response

import (
	"fmt"

	"github.com/shopspring/decimal"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
)

type Brand struct {
	BrandName    string          `json:"brandName"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
}

type Product struct {
	ID            string   `json:"_id"`
	ProductName   string   `json:"productName"`
	Category      string   `json:"category"`
	Description   string   `json:"description,omitempty"`
	Brands        []Brand  `json:"brands"`
	ProductImages []string `json:"productImages"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
}

// Brand returns the variant sold under name.
func (p Product) Brand(name string) (Brand, error) {
	for _, brand := range p.Brands {
		if brand.BrandName == name {
			return brand, nil
		}
	}
	return Brand{}, fmt.Errorf("%w: productId=%s brandName=%s", commonErrors.ErrBrandNotFound, p.ID, name)
}

// ListPrice is the price of the first brand, zero when the product has none.
func (p Product) ListPrice() decimal.Decimal {
	if len(p.Brands) == 0 {
		return decimal.Zero
	}
	return p.Brands[0].Price
}

func (p Product) ImageURL() string {
	if len(p.ProductImages) == 0 {
		return ""
	}
	return p.ProductImages[0]
}
