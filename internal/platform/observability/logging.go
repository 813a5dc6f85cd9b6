package observability

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/requestctx"
)

// ActorHeader carries the caller-supplied actor for lifecycle changes. It is recorded, not verified.
const ActorHeader = "X-Actor-ID"

// InjectLoggerMiddleware puts logger and the reported actor on the request context.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithLogger(r.Context(), logger)
			if actor := SanitizeActorID(r.Header.Get(ActorHeader)); actor != "" {
				ctx = requestctx.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLoggerMiddleware scopes the context logger to the request and writes one completion
// line per request. Server errors and panics log at error level, client errors at warn.
func RequestLoggerMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := requestctx.Logger(ctx).With(requestFields(r, projectID)...)
			r = r.WithContext(requestctx.WithLogger(ctx, logger))

			recorder := wrapRecorder(w)
			start := time.Now()
			completed := false
			defer func() {
				status := recorder.Status()
				if !completed && status < http.StatusInternalServerError {
					status = http.StatusInternalServerError
				}
				logger.Log(completionLevel(status), "request completed",
					zap.String("route", SanitizeRoute(routePattern(r))),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.Int64("bytes", recorder.BytesWritten()),
				)
			}()

			next.ServeHTTP(recorder, r)
			completed = true
		})
	}
}

func requestFields(r *http.Request, projectID string) []zap.Field {
	ctx := r.Context()
	info, _ := requestctx.Trace(ctx)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(ctx)),
		zap.String("method", SanitizeMethod(r.Method)),
		zap.String("trace_id", info.TraceID),
	}
	if actor := requestctx.Actor(ctx); actor != "" {
		fields = append(fields, zap.String("actor_id", actor))
	}
	if project := firstNonEmpty(info.ProjectID, projectID); project != "" && info.TraceID != "" {
		fields = append(fields, zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", project, info.TraceID)))
	}
	if ip := remoteIP(r.RemoteAddr); ip != "" {
		fields = append(fields, zap.String("remote_ip", ip))
	}
	return fields
}

func completionLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// ResourceMiddleware tags the request with the draft or order named by the chi URL parameter
// param. The id is added to the request logger and the server span.
func ResourceMiddleware(kind, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sanitizeString(strings.TrimSpace(chi.URLParam(r, param)), 128)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithResource(r.Context(), kind, id)
			ctx = requestctx.WithLogger(ctx, requestctx.Logger(ctx).With(zap.String(kind+"_id", id)))
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("checkout."+kind+"_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// routePattern prefers the matched chi pattern so ids stay out of labels and span names.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func remoteIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return sanitizeString(addr, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
