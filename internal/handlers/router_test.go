package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v (%s)", err, rr.Body.String())
	}
	code, _ := body["error"].(string)
	return code
}

func TestNewRouterServesProbesAndMetrics(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	health := NewHealthHandlers(
		WithHealthSystemService(&stubSystemService{report: domain.HealthReport{
			Status:      domain.HealthStatusOK,
			GeneratedAt: now,
			Checks:      map[string]domain.HealthCheck{"firestore": {Status: domain.HealthStatusOK}},
		}}),
		WithHealthClock(func() time.Time { return now }),
	)
	router := NewRouter(WithHealthHandlers(health))

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := serve(router, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("%s: unexpected content type %q", path, ct)
		}
	}

	rr := serve(router, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus output, got %d", rr.Code)
	}
}

func TestNewRouterDisabledGroupsAnswerNotImplemented(t *testing.T) {
	router := NewRouter(WithShippingRoutes(func(r chi.Router) {
		r.Get("/zone", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	}))

	cases := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/api/v1/shipping/zone", http.StatusNoContent, ""},
		{http.MethodPost, "/api/v1/checkout/drafts", http.StatusNotImplemented, "not_implemented"},
		{http.MethodGet, "/api/v1/orders/ord_1", http.StatusNotImplemented, "not_implemented"},
		{http.MethodGet, "/api/v1/pricing", http.StatusNotImplemented, "not_implemented"},
		{http.MethodGet, "/does/not/exist", http.StatusNotFound, "route_not_found"},
	}
	for _, tc := range cases {
		rr := serve(router, tc.method, tc.path)
		if rr.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rr.Code)
		}
		if tc.code != "" && errorCode(t, rr) != tc.code {
			t.Fatalf("%s %s: expected %s, got %s", tc.method, tc.path, tc.code, rr.Body.String())
		}
	}
}

func TestNewRouterMetricsCanBeDisabled(t *testing.T) {
	router := NewRouter(WithMetricsHandler(nil))
	if rr := serve(router, http.MethodGet, "/metrics"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected metrics disabled, got %d", rr.Code)
	}
}

func TestNewRouterGroupMiddlewareIsScoped(t *testing.T) {
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Group", "orders")
			next.ServeHTTP(w, r)
		})
	}
	router := NewRouter(WithGroupMiddlewares(GroupOrders, tag))

	if rr := serve(router, http.MethodGet, "/api/v1/orders/ord_1"); rr.Header().Get("X-Group") != "orders" {
		t.Fatal("expected orders middleware to run")
	}
	if rr := serve(router, http.MethodGet, "/api/v1/checkout/drafts"); rr.Header().Get("X-Group") != "" {
		t.Fatal("expected checkout group to skip orders middleware")
	}
}
