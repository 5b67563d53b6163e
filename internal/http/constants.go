package http

const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderRequestID   = "X-Request-Id"
	HeaderValueJson   = "application/json"
)

const maxResponseBytes = 4 << 20
