package request

const (
	DefaultPage          = 1
	DefaultLimit         = 10
	DefaultFeaturedLimit = 8
)

type FindProductsByCategory struct {
	Category string `validate:"required"       json:"category"`
	Page     int    `validate:"gte=1"          json:"page"`
	Limit    int    `validate:"gte=1,lte=100"  json:"limit"`
}

type FindFeaturedProducts struct {
	Limit int `validate:"gte=1,lte=100" json:"limit"`
}

type SearchProducts struct {
	Query string `validate:"required"      json:"q"`
	Page  int    `validate:"gte=1"         json:"page"`
	Limit int    `validate:"gte=1,lte=100" json:"limit"`
}
