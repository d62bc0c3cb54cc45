package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("competition-manager/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens a handler span tagged with the signed-in user. Helpers and
// untraced requests (health probes) get a no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(spanAttributes(ctx)...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

func spanAttributes(ctx context.Context) []attribute.KeyValue {
	identity, ok := identityFromContext(ctx)
	if !ok || identity.ID == "" {
		return nil
	}
	return []attribute.KeyValue{attribute.String("enduser.id", identity.ID)}
}

// recordFailure marks the active span failed for server-side errors only;
// 4xx answers are the caller's problem and stay unset.
func recordFailure(ctx context.Context, status int, err error) {
	if status < http.StatusInternalServerError || err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, http.StatusText(status))
}
