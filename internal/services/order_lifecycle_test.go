package services

import (
	"errors"
	"math"
	"testing"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

func pendingOrder(at time.Time) domain.Order {
	return domain.Order{
		ID:            "ord_1",
		OrderNumber:   "NX-2024-000001",
		Status:        domain.OrderStatusPending,
		StatusHistory: []domain.StatusEntry{{Status: domain.OrderStatusPending, At: at}},
		PlacedAt:      at,
		UpdatedAt:     at,
	}
}

func TestApplyStatusTransitionShippedThenCancelled(t *testing.T) {
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	order := pendingOrder(start)

	order, err := ApplyStatusTransition(order, StatusChange{Target: domain.OrderStatusShipped, At: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("pending → shipped: %v", err)
	}
	order, err = ApplyStatusTransition(order, StatusChange{Target: domain.OrderStatusCancelled, At: start.Add(2 * time.Hour), Reason: " customer request "})
	if err != nil {
		t.Fatalf("shipped → cancelled: %v", err)
	}

	if len(order.StatusHistory) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(order.StatusHistory))
	}
	if order.StatusHistory[2].Reason != "customer request" {
		t.Fatalf("expected trimmed reason, got %q", order.StatusHistory[2].Reason)
	}

	_, err = ApplyStatusTransition(order, StatusChange{Target: domain.OrderStatusDelivered, At: start.Add(3 * time.Hour)})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from cancelled, got %v", err)
	}
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) || transitionErr.From != domain.OrderStatusCancelled || transitionErr.To != domain.OrderStatusDelivered {
		t.Fatalf("expected typed transition error, got %v", err)
	}
}

func TestApplyStatusTransitionRules(t *testing.T) {
	cases := []struct {
		from domain.OrderStatus
		to   domain.OrderStatus
		ok   bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusConfirmed, true},
		{domain.OrderStatusConfirmed, domain.OrderStatusPending, false},
		{domain.OrderStatusProcessing, domain.OrderStatusOutForDelivery, true},
		{domain.OrderStatusOutForDelivery, domain.OrderStatusCancelled, true},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusDelivered, domain.OrderStatusReturned, true},
		{domain.OrderStatusDelivered, domain.OrderStatusRefunded, true},
		{domain.OrderStatusShipped, domain.OrderStatusReturned, false},
		{domain.OrderStatusReturned, domain.OrderStatusRefunded, false},
		{domain.OrderStatusRefunded, domain.OrderStatusPending, false},
		{domain.OrderStatusShipped, domain.OrderStatusShipped, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}

	for _, status := range []domain.OrderStatus{domain.OrderStatusCancelled, domain.OrderStatusReturned, domain.OrderStatusRefunded} {
		if len(AllowedTransitions(status)) != 0 {
			t.Fatalf("expected no transitions from %s", status)
		}
		if !IsTerminalStatus(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
}

func TestApplyStatusTransitionHistoryIsMonotonic(t *testing.T) {
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	order := pendingOrder(start)

	// A clock running behind the last entry is clamped.
	next, err := ApplyStatusTransition(order, StatusChange{Target: domain.OrderStatusConfirmed, At: start.Add(-time.Minute)})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if next.StatusHistory[1].At.Before(next.StatusHistory[0].At) {
		t.Fatalf("history went backwards: %v", next.StatusHistory)
	}
	if len(order.StatusHistory) != 1 {
		t.Fatalf("input order must not be mutated")
	}
}

func TestApplyStatusTransitionRecordsTracking(t *testing.T) {
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	tracking := &domain.TrackingInfo{Carrier: "UPS", TrackingNumber: "1Z999"}

	order, err := ApplyStatusTransition(pendingOrder(start), StatusChange{Target: domain.OrderStatusShipped, At: start, Tracking: tracking})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	tracking.TrackingNumber = "changed"
	if order.Tracking == nil || order.Tracking.TrackingNumber != "1Z999" {
		t.Fatalf("expected tracking copied onto order, got %+v", order.Tracking)
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := map[string]domain.OrderStatus{
		"pending":           domain.OrderStatusPending,
		" OUT_FOR_DELIVERY": domain.OrderStatusOutForDelivery,
		"canceled":          domain.OrderStatusCancelled,
		"refunded":          domain.OrderStatusRefunded,
	}
	for raw, want := range cases {
		got, ok := ParseOrderStatus(raw)
		if !ok || got != want {
			t.Fatalf("ParseOrderStatus(%q) = %s, %v", raw, got, ok)
		}
	}
	if _, ok := ParseOrderStatus("lost"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestOrderProgress(t *testing.T) {
	cases := []struct {
		status domain.OrderStatus
		want   float64
	}{
		{domain.OrderStatusPending, 0},
		{domain.OrderStatusProcessing, 0.4},
		{domain.OrderStatusShipped, 0.6},
		{domain.OrderStatusDelivered, 1},
	}
	for _, tc := range cases {
		got, ok := StageProgress(tc.status)
		if !ok || math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("StageProgress(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
	if _, ok := StageProgress(domain.OrderStatusCancelled); ok {
		t.Fatalf("cancelled is not a forward stage")
	}

	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	order, err := ApplyStatusTransition(pendingOrder(start), StatusChange{Target: domain.OrderStatusShipped, At: start})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	order, err = ApplyStatusTransition(order, StatusChange{Target: domain.OrderStatusCancelled, At: start})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got := OrderProgress(order); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expected cancelled order to report last forward stage, got %v", got)
	}
}
