package log

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type requestID struct{}

// RequestIDFromContext returns the request id attached to c, or an empty string.
func RequestIDFromContext(c context.Context) string {
	id, ok := c.Value(requestID{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestID{}, id)
}

// EnsureRequestID attaches a fresh request id to c unless one is already present.
func EnsureRequestID(c context.Context) (context.Context, string) {
	if id := RequestIDFromContext(c); id != "" {
		return c, id
	}
	id := uuid.NewString()
	return AttachRequestIDToContext(c, id), id
}

func AttachTraceIDFromContext() zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, message string) {
		c := e.GetCtx()
		if c == nil {
			return
		}
		if reqID := RequestIDFromContext(c); reqID != "" {
			e.Str(KeyRequestID, reqID)
		}
		spanCtx := trace.SpanContextFromContext(c)
		if spanCtx.IsValid() {
			e.Str(KeyTraceID, spanCtx.TraceID().String()).
				Str(KeySpanID, spanCtx.SpanID().String())
		}
	}
}
