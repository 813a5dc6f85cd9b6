package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/requestctx"
)

func TestEventLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logEvent := EventLogger(zap.New(core))

	ctx := requestctx.WithResource(context.Background(), "draft", "ord_1")
	logEvent(ctx, "checkout.draft.created", map[string]any{"items": 2})
	logEvent(ctx, "checkout.order.submit.failed", map[string]any{"error": errors.New("boom")})
	logEvent(ctx, "order.status.publish", map[string]any{"error": "timeout"})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["draft_id"] != "ord_1" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[0].ContextMap()["items"] != int64(2) {
		t.Fatalf("expected items field, got %+v", entries[0].ContextMap())
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("unexpected failure entry %+v", entries[1])
	}
	if entries[2].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", entries[2].Level)
	}
}

func TestRequestPipelineLogsResourceAndActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	router := chi.NewRouter()
	router.Use(InjectLoggerMiddleware(logger))
	router.Use(RequestLoggerMiddleware("test-project"))
	router.Use(RecoveryMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.With(ResourceMiddleware("order", "orderId")).Get("/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		if res, ok := requestctx.ResourceFrom(r.Context()); !ok || res.ID != "ord_9" {
			t.Errorf("expected resource on context, got %+v", res)
		}
		requestctx.Logger(r.Context()).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	})
	router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/ord_9", nil)
	req.Header.Set(ActorHeader, " ops-1\n")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	handled := logs.FilterMessage("handled").All()
	if len(handled) != 1 {
		t.Fatalf("expected handler log, got %d", len(handled))
	}
	fields := handled[0].ContextMap()
	if fields["order_id"] != "ord_9" || fields["actor_id"] != "ops-1" {
		t.Fatalf("unexpected fields %+v", fields)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_server_error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if len(logs.FilterMessage("panic recovered").All()) != 1 {
		t.Fatal("expected panic to be logged")
	}
}

func TestTraceMiddlewarePropagatesCloudTraceHeader(t *testing.T) {
	var got requestctx.TraceInfo
	router := chi.NewRouter()
	router.Use(TraceMiddleware("shop-prod"))
	router.Get("/checkout/{draftId}", func(w http.ResponseWriter, r *http.Request) {
		got, _ = requestctx.Trace(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/checkout/ord_1", nil)
	req.Header.Set(cloudTraceHeader, "105445aa7843bc8bf206b12000100000/1;o=1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got.ProjectID != "shop-prod" {
		t.Fatalf("expected project on trace info, got %+v", got)
	}
	// Without a registered SDK the span is non-recording and keeps the remote context.
	if got.TraceID != "105445aa7843bc8bf206b12000100000" || !got.Sampled {
		t.Fatalf("expected remote trace to carry through, got %+v", got)
	}
	if header := rec.Header().Get(cloudTraceHeader); !strings.HasPrefix(header, got.TraceID+"/") || !strings.HasSuffix(header, ";o=1") {
		t.Fatalf("unexpected response trace header %q", header)
	}
	if rec.Header().Get("traceparent") == "" {
		t.Fatal("expected traceparent on response")
	}
}

func TestParseSpanIDAcceptsDecimalAndHex(t *testing.T) {
	cases := map[string]string{
		"1":                "0000000000000001",
		"12345":            "0000000000003039",
		"00f067aa0ba902b7": "00f067aa0ba902b7",
	}
	for input, want := range cases {
		id, ok := parseSpanID(input)
		if !ok || id.String() != want {
			t.Fatalf("parseSpanID(%q) = %s, %v; want %s", input, id, ok, want)
		}
	}
	for _, bad := range []string{"", "0", "zz", "1234567890abcdef01"} {
		if _, ok := parseSpanID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSanitizeStringStripsControlRunes(t *testing.T) {
	if got := SanitizeActorID(" ops\x00-1\x1b "); got != "ops-1" {
		t.Fatalf("unexpected actor %q", got)
	}
	if got := sanitizeString("ééééé", 3); got != "ééé" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if SanitizeRoute("") != "/" {
		t.Fatal("expected empty route to map to /")
	}
}
