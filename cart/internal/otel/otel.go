package otel

import (
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/medkit/internal/common/constants"
)

var (
	Tracer = otel.Tracer(
		constants.AppCartService,
		trace.WithInstrumentationAttributes(semconv.ServiceName(constants.AppCartService)),
	)
	Meter = otel.Meter(constants.AppCartService)
)
