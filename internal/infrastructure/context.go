package infrastructure

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	traceIDKey contextKey = iota
	runIDKey
)

// WithTraceID tags ctx with the id of the request being served
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the request id stored by WithTraceID, or ""
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// WithRunID tags ctx with the pipeline run it belongs to. Every record
// logged under ctx then carries run_id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run id stored by WithRunID, or ""
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// contextAttrs lists the correlation attributes carried by ctx. An
// explicit trace id wins over the active span's.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := GetTraceID(ctx); id != "" {
		attrs = append(attrs, slog.String("trace_id", id))
	} else if id := TraceIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("trace_id", id))
	}
	if id := RunIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("run_id", id))
	}
	return attrs
}
