package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

func TestCouponClientFindByCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("expected api key header, got %q", r.Header.Get("X-API-Key"))
		}
		switch r.URL.Path {
		case "/coupons/SAVE10":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":"save10","kind":"percentage","value":10,"minSubtotal":"50.00","expiresAt":"2030-01-01T00:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewCouponClient(Options{Name: "coupon_store_lookup", BaseURL: srv.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	coupon, err := client.FindByCode(context.Background(), " save10 ")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if coupon.Code != "SAVE10" || coupon.Kind != domain.CouponKindPercentage || !coupon.Value.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected coupon %+v", coupon)
	}
	if coupon.MinSubtotal == nil || !coupon.MinSubtotal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected minimum subtotal, got %+v", coupon.MinSubtotal)
	}
	if coupon.ExpiresAt == nil || coupon.ExpiresAt.Year() != 2030 {
		t.Fatalf("expected expiry, got %v", coupon.ExpiresAt)
	}

	if _, err := client.FindByCode(context.Background(), "NOPE"); !repositories.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCouponClientRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"code":"FLAT5","kind":"flat","value":"5"}`))
	}))
	defer srv.Close()

	client, err := NewCouponClient(Options{Name: "coupon_store_retry", BaseURL: srv.URL, MaxRetries: 2, RetryWait: time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	coupon, err := client.FindByCode(context.Background(), "flat5")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if coupon.Kind != domain.CouponKindFlat || atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("unexpected result %+v after %d hits", coupon, hits)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewCouponClient(Options{
		Name:               "coupon_store_breaker",
		BaseURL:            srv.URL,
		BreakerFailures:    2,
		BreakerOpenTimeout: time.Minute,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.FindByCode(ctx, "ANY"); !repositories.IsUnavailable(err) {
			t.Fatalf("call %d: expected unavailable, got %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected open breaker to short-circuit, upstream saw %d calls", got)
	}
	if client.State() != "open" {
		t.Fatalf("expected open breaker, got %s", client.State())
	}
	if err := client.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail while open")
	}
}

func TestOrderClientSubmitSetsIdempotencyKey(t *testing.T) {
	var received domain.OrderPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "ord_123" {
			t.Errorf("expected idempotency key, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewOrderClient(Options{Name: "order_api_submit", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	payload := domain.OrderPayload{
		OrderID:          "ord_123",
		OrderNumber:      "NX-2024-000001",
		DeliveryTimeSlot: "morning",
		ShippingMethod:   "express",
		PaymentInfo:      domain.PaymentInfoPayload{Method: "card", CardLast4: "4242"},
	}
	if err := client.SubmitOrder(context.Background(), payload); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if received.OrderNumber != "NX-2024-000001" || received.PaymentInfo.CardLast4 != "4242" {
		t.Fatalf("unexpected payload %+v", received)
	}
}

func TestOrderClientSubmitConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"order exists"}`))
	}))
	defer srv.Close()

	client, err := NewOrderClient(Options{Name: "order_api_conflict", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.SubmitOrder(context.Background(), domain.OrderPayload{OrderID: "ord_1"})
	if !repositories.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOrderClientNotifyStatus(t *testing.T) {
	var received domain.StatusUpdatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/ord_9/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewOrderClient(Options{Name: "order_api_notify", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	payload := domain.NewStatusUpdatePayload("ord_9", domain.OrderStatusShipped, &domain.TrackingInfo{Carrier: "UPS", TrackingNumber: "1Z999"})
	if err := client.NotifyStatus(context.Background(), payload); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if received.NewStatus != "shipped" || received.TrackingInfo == nil || received.TrackingInfo.TrackingNumber != "1Z999" {
		t.Fatalf("unexpected payload %+v", received)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewOrderClient(Options{}); err == nil {
		t.Fatal("expected error without base url")
	}
}
