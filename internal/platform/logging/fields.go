package logging

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func traceFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// redactedKeys never reach the log output with their values.
var redactedKeys = map[string]struct{}{
	"password":      {},
	"access_token":  {},
	"refresh_token": {},
	"apikey":        {},
	"authorization": {},
}

const redacted = "[REDACTED]"

func zapFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg"
		}

		var value any
		if i+1 < len(args) {
			value = args[i+1]
		}
		out = append(out, zapField(key, value))
	}

	return out
}

func zapField(key string, value any) zap.Field {
	if _, ok := redactedKeys[strings.ToLower(key)]; ok && value != nil {
		return zap.String(key, redacted)
	}
	switch v := value.(type) {
	case error:
		return zap.NamedError(key, v)
	case string:
		return zap.String(key, v)
	default:
		return zap.Any(key, v)
	}
}
