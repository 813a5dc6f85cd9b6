package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/requestctx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

func newOrderRouter(svc services.OrderService) chi.Router {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor := r.Header.Get("X-Actor-ID"); actor != "" {
				r = r.WithContext(requestctx.WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Route("/orders", NewOrderHandlers(svc).Routes)
	return router
}

func sampleOrder(status domain.OrderStatus) domain.Order {
	placed := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	history := []domain.StatusEntry{{Status: domain.OrderStatusPending, At: placed}}
	if status != domain.OrderStatusPending {
		history = append(history, domain.StatusEntry{Status: status, At: placed.Add(time.Hour), Actor: "ops-1"})
	}
	return domain.Order{
		ID:               "ord_123",
		OrderNumber:      "NX-2024-000042",
		Currency:         "USD",
		Items:            []domain.CartItem{{ProductID: "sku-1", Name: "Mug", Price: decimal.RequireFromString("12.5"), Quantity: 2}},
		Pricing:          domain.PricingBreakdown{Currency: "USD", Subtotal: decimal.RequireFromString("25"), Total: decimal.RequireFromString("25")},
		Zone:             domain.ZoneLocal,
		ShippingMethod:   domain.ShippingMethodStandard,
		DeliveryTimeSlot: domain.TimeSlotAny,
		Delivery: domain.DeliveryWindow{
			Earliest: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Latest:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		},
		Status:        status,
		StatusHistory: history,
		PlacedAt:      placed,
	}
}

func TestOrderHandlersGetOrder(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		getFunc: func(_ context.Context, orderID string) (domain.Order, error) {
			if orderID != "ord_123" {
				t.Fatalf("unexpected order id %s", orderID)
			}
			return sampleOrder(domain.OrderStatusShipped), nil
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/ord_123", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Progress != 0.6 {
		t.Fatalf("expected progress 0.6 for shipped, got %v", resp.Progress)
	}
	if resp.EarliestDelivery != "2024-03-05" || resp.LatestDelivery != "2024-03-07" {
		t.Fatalf("unexpected delivery window %+v", resp)
	}
	if len(resp.StatusHistory) != 2 || resp.StatusHistory[1].Actor != "ops-1" {
		t.Fatalf("unexpected history %+v", resp.StatusHistory)
	}
	if resp.Shipping.Zone != "local" {
		t.Fatalf("expected zone on shipping payload, got %+v", resp.Shipping)
	}
}

func TestOrderHandlersGetOrderNotFound(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestOrderHandlersTransitionStatus(t *testing.T) {
	var captured services.OrderStatusTransitionCommand
	router := newOrderRouter(&stubOrderService{
		transitionFunc: func(_ context.Context, cmd services.OrderStatusTransitionCommand) (domain.Order, error) {
			captured = cmd
			order := sampleOrder(domain.OrderStatusShipped)
			order.Tracking = cmd.Tracking
			return order, nil
		},
	})

	body := `{"status":"shipped","expectedStatus":"processing","reason":" handed to carrier ","tracking":{"carrier":"UPS","trackingNumber":"1Z999"}}`
	req := httptest.NewRequest(http.MethodPost, "/orders/ord_123/status", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "ops-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.OrderID != "ord_123" || captured.TargetStatus != "shipped" || captured.ActorID != "ops-1" {
		t.Fatalf("unexpected command %+v", captured)
	}
	if captured.ExpectedStatus == nil || *captured.ExpectedStatus != "processing" {
		t.Fatalf("expected status precondition, got %v", captured.ExpectedStatus)
	}
	if captured.Reason != "handed to carrier" {
		t.Fatalf("expected trimmed reason, got %q", captured.Reason)
	}
	if captured.Tracking == nil || captured.Tracking.TrackingNumber != "1Z999" {
		t.Fatalf("expected tracking, got %+v", captured.Tracking)
	}

	var resp orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tracking == nil || resp.Tracking.Carrier != "UPS" {
		t.Fatalf("expected tracking in response, got %+v", resp.Tracking)
	}
}

func TestOrderHandlersTransitionRejected(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		transitionFunc: func(context.Context, services.OrderStatusTransitionCommand) (domain.Order, error) {
			return domain.Order{}, &services.InvalidTransitionError{From: domain.OrderStatusCancelled, To: domain.OrderStatusShipped}
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/orders/ord_123/status", strings.NewReader(`{"status":"shipped"}`)))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid_transition" || body["from"] != "cancelled" || body["to"] != "shipped" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["terminal"] != true || body["message"] != "order can no longer be modified" {
		t.Fatalf("expected terminal message, got %v", body)
	}
}

func TestOrderHandlersTransitionFromDeliveredKeepsDetail(t *testing.T) {
	router := newOrderRouter(&stubOrderService{
		transitionFunc: func(context.Context, services.OrderStatusTransitionCommand) (domain.Order, error) {
			return domain.Order{}, &services.InvalidTransitionError{From: domain.OrderStatusDelivered, To: domain.OrderStatusShipped}
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/orders/ord_123/status", strings.NewReader(`{"status":"shipped"}`)))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["terminal"] != true || body["message"] == "order can no longer be modified" {
		t.Fatalf("delivered orders still accept returns, got %v", body)
	}
}

func TestOrderHandlersTransitionRequiresStatus(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/orders/ord_123/status", strings.NewReader(`{"reason":"x"}`)))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestOrderHandlersCancel(t *testing.T) {
	var captured services.CancelOrderCommand
	router := newOrderRouter(&stubOrderService{
		cancelFunc: func(_ context.Context, cmd services.CancelOrderCommand) (domain.Order, error) {
			captured = cmd
			return sampleOrder(domain.OrderStatusCancelled), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/ord_123/cancel", nil)
	req.Header.Set("X-Actor-ID", "cust-9")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.OrderID != "ord_123" || captured.ActorID != "cust-9" || captured.Reason != "" {
		t.Fatalf("unexpected command %+v", captured)
	}
	var resp orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "cancelled" || len(resp.AllowedTransitions) != 0 {
		t.Fatalf("expected terminal cancelled order, got %+v", resp)
	}
	if resp.Progress != 0 {
		t.Fatalf("expected progress of last forward stage (pending), got %v", resp.Progress)
	}
}

func TestOrderHandlersCancelReasonTooLong(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	body := `{"reason":"` + strings.Repeat("a", maxOrderReasonLength+1) + `"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/orders/ord_123/cancel", strings.NewReader(body)))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}
