package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
	KeyConfig        = "config"
	KeyRequestBody   = "requestBody"
	KeyRequestMethod = "requestMethod"
	KeyRequestURL    = "requestURL"
	KeyStatusCode    = "statusCode"
	KeyResponseBody  = "responseBody"

	KeySessionID    = "sessionId"
	KeySessionStore = "sessionStore"

	KeyCart             = "cart"
	KeyCartItems        = "cartItems"
	KeyCartItemsCount   = "cartItemsCount"
	KeyCartOperation    = "cartOperation"
	KeyProductID        = "productId"
	KeyBrandName        = "brandName"
	KeyQuantity         = "quantity"
	KeyPricingBreakdown = "pricingBreakdown"

	KeyOrder    = "order"
	KeyOrderID  = "orderId"
	KeyCategory = "category"
	KeyQuery    = "query"
	KeyPage     = "page"
	KeyLimit    = "limit"

	KeyCacheKey = "cacheKey"
	KeyDbPath   = "dbPath"
)
