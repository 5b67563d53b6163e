package request

import (
	"github.com/shopspring/decimal"
)

const StatusPendingPayment = "Pending Payment"

type Customer struct {
	Name  string `validate:"required"       json:"customerName"`
	Email string `validate:"required,email" json:"customerEmail"`
}

type DeliveryInfo struct {
	FullName       string `validate:"required" json:"fullName"`
	Phone          string `validate:"required" json:"phone"`
	Address        string `validate:"required" json:"address"`
	City           string `                    json:"city,omitempty"`
	State          string `                    json:"state,omitempty"`
	AdditionalInfo string `                    json:"additionalInfo,omitempty"`
}

type OrderItem struct {
	ProductID   string          `validate:"required"       json:"productId"`
	BrandName   string          `validate:"required"       json:"brandName"`
	ProductName string          `                          json:"productName"`
	Price       decimal.Decimal `                          json:"price"`
	Quantity    int             `validate:"required,gte=1" json:"quantity"`
}

type CreateOrder struct {
	Customer
	SessionID     string          `validate:"required"            json:"sessionId"`
	Items         []OrderItem     `validate:"required,gt=0,dive"  json:"items"`
	Subtotal      decimal.Decimal `                               json:"subtotal"`
	Shipping      decimal.Decimal `                               json:"shipping"`
	Tax           decimal.Decimal `                               json:"tax"`
	Total         decimal.Decimal `                               json:"total"`
	DeliveryInfo  DeliveryInfo    `validate:"required"            json:"deliveryInfo"`
	PaymentMethod string          `validate:"required"            json:"paymentMethod"`
	PaymentProof  string          `validate:"required"            json:"paymentProof"`
	Status        string          `validate:"required"            json:"status"`
}
