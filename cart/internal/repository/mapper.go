package repository

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Alturino/medkit/cart/pkg/response"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/validate"
)

type cartEnvelope struct {
	Cart *remoteCart `json:"cart"`
}

type remoteCart struct {
	Items *[]remoteItem `json:"items"`
}

type remoteItem struct {
	Product   *remoteProduct   `validate:"required"       json:"product"`
	BrandName string           `validate:"required"       json:"brandName"`
	Price     *decimal.Decimal `validate:"required"       json:"price"`
	Quantity  int              `validate:"required,gte=1" json:"quantity"`
}

type remoteProduct struct {
	ID            string   `validate:"required" json:"_id"`
	ProductName   string   `                    json:"productName"`
	ProductImages []string `                    json:"productImages"`
}

// Response flattens the envelope into the local cart model. Any item that
// does not fit the model rejects the whole cart.
func (e cartEnvelope) Response() (response.Cart, error) {
	if e.Cart == nil {
		return response.Cart{}, fmt.Errorf("%w: missing cart", commonErrors.ErrMalformedResponse)
	}
	if e.Cart.Items == nil {
		return response.Cart{}, fmt.Errorf("%w: missing cart items", commonErrors.ErrMalformedResponse)
	}

	remoteItems := *e.Cart.Items
	items := make([]response.LineItem, 0, len(remoteItems))
	seen := make(map[response.LineKey]struct{}, len(remoteItems))
	for i, remote := range remoteItems {
		item, err := remote.Response()
		if err != nil {
			return response.Cart{}, fmt.Errorf("item %d: %w", i, err)
		}
		if _, ok := seen[item.Key()]; ok {
			return response.Cart{}, fmt.Errorf(
				"%w: %w productId=%s brandName=%s",
				commonErrors.ErrMalformedResponse,
				commonErrors.ErrDuplicateLine,
				item.ProductID,
				item.BrandName,
			)
		}
		seen[item.Key()] = struct{}{}
		items = append(items, item)
	}
	return response.Cart{Items: items}, nil
}

func (r remoteItem) Response() (response.LineItem, error) {
	if err := validate.Get().Struct(r); err != nil {
		return response.LineItem{}, fmt.Errorf("%w: %w", commonErrors.ErrMalformedResponse, err)
	}
	if r.Price.IsNegative() {
		return response.LineItem{}, fmt.Errorf(
			"%w: negative price=%s",
			commonErrors.ErrMalformedResponse,
			r.Price.String(),
		)
	}

	item := response.LineItem{
		ProductID:   r.Product.ID,
		BrandName:   r.BrandName,
		DisplayName: r.Product.ProductName,
		UnitPrice:   *r.Price,
		Quantity:    r.Quantity,
	}
	if len(r.Product.ProductImages) > 0 {
		item.ImageURL = r.Product.ProductImages[0]
		item.Images = append([]string(nil), r.Product.ProductImages...)
	}
	return item, nil
}
