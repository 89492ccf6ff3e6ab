package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError records an error on the span and marks its status accordingly.
func SetError(span trace.Span, err error, message string, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	span.AddEvent(message, trace.WithAttributes(attrs...))
}
