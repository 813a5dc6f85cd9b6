// Package requestctx carries per-request values (logger, trace, actor, resource) between the
// HTTP middlewares and the services.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type key int

const (
	loggerKey key = iota
	traceKey
	actorKey
	resourceKey
)

var noopLogger = zap.NewNop()

// TraceInfo is the trace a request belongs to. ProjectID is needed to build the Cloud Logging
// trace resource name.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// Resource identifies the draft or order a request operates on.
type Resource struct {
	Kind string
	ID   string
}

func with(ctx context.Context, k key, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, k, value)
}

func value[T any](ctx context.Context, k key) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// WithLogger attaches logger; nil attaches a no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return with(ctx, loggerKey, logger)
}

// Logger never returns nil.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := value[*zap.Logger](ctx, loggerKey); ok && logger != nil {
		return logger
	}
	return noopLogger
}

func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return with(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return value[TraceInfo](ctx, traceKey)
}

// TraceID is "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithActor records the caller-reported actor ID.
func WithActor(ctx context.Context, actorID string) context.Context {
	return with(ctx, actorKey, actorID)
}

func Actor(ctx context.Context) string {
	actor, _ := value[string](ctx, actorKey)
	return actor
}

// WithResource tags the context with the draft or order being handled.
func WithResource(ctx context.Context, kind, id string) context.Context {
	return with(ctx, resourceKey, Resource{Kind: kind, ID: id})
}

// ResourceFrom reports false when no resource, or one without an ID, was recorded.
func ResourceFrom(ctx context.Context) (Resource, bool) {
	res, ok := value[Resource](ctx, resourceKey)
	return res, ok && res.ID != ""
}
