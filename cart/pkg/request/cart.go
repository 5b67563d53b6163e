package request

import (
	"github.com/shopspring/decimal"

	orderRequest "github.com/Alturino/medkit/order/pkg/request"
	productResponse "github.com/Alturino/medkit/product/pkg/response"
)

// AddLine carries the product snapshot the storefront had when the shopper
// picked a variant. Only ProductID and BrandName are sent; the server is the
// source of truth for price and name.
type AddLine struct {
	ProductID   string          `validate:"required" json:"productId"`
	BrandName   string          `validate:"required" json:"brandName"`
	DisplayName string          `                    json:"productName"`
	UnitPrice   decimal.Decimal `                    json:"price"`
	ImageURL    string          `                    json:"imageUrl"`
}

// AddLineFromProduct snapshots the brandName variant of product.
func AddLineFromProduct(product productResponse.Product, brandName string) (AddLine, error) {
	brand, err := product.Brand(brandName)
	if err != nil {
		return AddLine{}, err
	}
	return AddLine{
		ProductID:   product.ID,
		BrandName:   brand.BrandName,
		DisplayName: product.ProductName,
		UnitPrice:   brand.Price,
		ImageURL:    product.ImageURL(),
	}, nil
}

// UpdateQuantity forwards Quantity as is, zero and negative values included.
type UpdateQuantity struct {
	ProductID string `validate:"required" json:"productId"`
	BrandName string `validate:"required" json:"brandName"`
	Quantity  int    `                    json:"quantity"`
}

type RemoveLine struct {
	ProductID string `validate:"required" json:"productId"`
	BrandName string `validate:"required" json:"brandName"`
}

// Checkout places an order for the current cart. PaymentProof names the
// uploaded transfer receipt.
type Checkout struct {
	Customer      orderRequest.Customer     `validate:"required" json:"customer"`
	Delivery      orderRequest.DeliveryInfo `validate:"required" json:"deliveryInfo"`
	PaymentMethod string                    `validate:"required" json:"paymentMethod"`
	PaymentProof  string                    `validate:"required" json:"paymentProof"`
}
