package constants

const (
	AppMedkit         = "medkit"
	AppCartService    = "cart-service"
	AppProductService = "product-service"
	AppOrderService   = "order-service"
	AppSession        = "session-provider"
)
