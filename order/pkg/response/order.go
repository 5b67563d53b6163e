package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"_id"`
	SessionID     string          `json:"sessionId"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ProductID   string          `json:"productId"`
	BrandName   string          `json:"brandName"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}
