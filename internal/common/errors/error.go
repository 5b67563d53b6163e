package errors

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrDuplicateLine     = errors.New("duplicate cart line")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrBrandNotFound     = errors.New("brand not found")
	ErrSessionNotFound   = errors.New("session id not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnknownDriver     = errors.New("unknown session driver")
)

// ResponseError is returned when the commerce API answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s returned status code=%d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf(
		"%s %s returned status code=%d with message=%s",
		e.Method,
		e.URL,
		e.StatusCode,
		e.Message,
	)
}

// Temporary reports whether the failure is on the server side. Only those
// count against the client's circuit breaker.
func (e *ResponseError) Temporary() bool {
	return e.StatusCode >= 500
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
