package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the tarefista package.
const TracerName = "github.com/tarefista/tarefista"

// Span attribute keys for backend API operations.
const (
	// SpanAttrOperation is the API operation name attribute.
	SpanAttrOperation = "tarefista.operation"

	// SpanAttrStatus is the operation status attribute.
	SpanAttrStatus = "tarefista.status"

	// SpanAttrHTTPStatus is the HTTP status code returned by the backend.
	SpanAttrHTTPStatus = "tarefista.http_status"
)

// StartSpan starts a span for a backend API operation.
// The returned end function records the outcome and must always be called.
func StartSpan(ctx context.Context, tracer trace.Tracer, operation string) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, operation,
		trace.WithAttributes(attribute.String(SpanAttrOperation, operation)),
	)

	return ctx, func(err error) {
		if err != nil {
			span.SetAttributes(attribute.String(SpanAttrStatus, StatusError))
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetAttributes(attribute.String(SpanAttrStatus, StatusSuccess))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
