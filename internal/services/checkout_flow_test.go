package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

func newTestCheckoutFlow(t *testing.T) *CheckoutFlow {
	t.Helper()
	flow, err := NewCheckoutFlow(CheckoutFlowDeps{
		Zones:          NewZoneResolver("", nil),
		Quotes:         newTestQuoteCalculator(t),
		Pricing:        NewPricingAggregator("USD"),
		TaxRate:        dec("0.08"),
		StaleTolerance: dec("0.01"),
	})
	if err != nil {
		t.Fatalf("NewCheckoutFlow: %v", err)
	}
	return flow
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   "Ada Lovelace",
		Phone:      "212-555-0199",
		Email:      "ada@example.com",
		Line1:      "1 Main St",
		City:       "Brooklyn",
		PostalCode: "11201",
		Country:    "US",
	}
}

func validCard() domain.PaymentInfo {
	return domain.PaymentInfo{
		Method:     domain.PaymentMethodCard,
		CardNumber: "4242 4242 4242 4242",
		CardHolder: "Ada Lovelace",
		CardExpiry: "12/30",
	}
}

func mustTransition(t *testing.T, flow *CheckoutFlow, draft domain.OrderDraft, event CheckoutEvent) domain.OrderDraft {
	t.Helper()
	if event.Now.IsZero() {
		event.Now = quoteNow
	}
	next, err := flow.Transition(draft, event)
	if err != nil {
		t.Fatalf("Transition %s: %v", event.Kind, err)
	}
	return next
}

// draftAtReview walks a 120.00 cart shipped to the local zone up to the review step.
func draftAtReview(t *testing.T, flow *CheckoutFlow) domain.OrderDraft {
	t.Helper()
	items := []domain.CartItem{
		{ProductID: "sku-1", Name: "Kettle", Price: dec("40"), Quantity: 2},
		{ProductID: "sku-2", Name: "Teapot", Price: dec("40"), Quantity: 1},
	}
	draft, err := flow.NewDraft("ord_test", items, quoteNow)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	shipping := validShipping()
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventAdvance})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventSelectDelivery, Method: domain.ShippingMethodStandard, Slot: domain.TimeSlotAny})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventAdvance})
	payment := validCard()
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventSelectPayment, Payment: &payment})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventAdvance})
	if draft.Step != domain.CheckoutStepReview {
		t.Fatalf("expected review step, got %s", draft.Step)
	}
	return draft
}

func TestCheckoutFlowHappyPath(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	if draft.Zone != domain.ZoneLocal {
		t.Fatalf("expected local zone, got %s", draft.Zone)
	}
	if draft.Quote == nil || !draft.Quote.FreeShippingApplied {
		t.Fatalf("expected free shipping quote, got %+v", draft.Quote)
	}
	if draft.Payment.CardNumber != "4242424242424242" {
		t.Fatalf("expected card separators stripped, got %q", draft.Payment.CardNumber)
	}
	if got := domain.FormatMoney(draft.Pricing.Total); got != "129.60" {
		t.Fatalf("expected total 129.60, got %s", got)
	}

	shown := dec("129.60")
	placedAt := quoteNow.Add(time.Minute)
	placed := mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventPlace, ShownTotal: &shown, Now: placedAt})
	if placed.Step != domain.CheckoutStepPlaced {
		t.Fatalf("expected placed step, got %s", placed.Step)
	}
	if placed.PlacedAt == nil || !placed.PlacedAt.Equal(placedAt) {
		t.Fatalf("expected placedAt %s, got %v", placedAt, placed.PlacedAt)
	}

	if _, err := flow.Transition(placed, CheckoutEvent{Kind: CheckoutEventBack, Now: placedAt}); !errors.Is(err, ErrCheckoutDraftPlaced) {
		t.Fatalf("expected placed drafts to reject events, got %v", err)
	}
}

func TestCheckoutFlowGateFailureLeavesDraftUnchanged(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft, err := flow.NewDraft("ord_gate", []domain.CartItem{{ProductID: "a", Price: dec("10"), Quantity: 1}}, quoteNow)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	shipping := domain.ShippingInfo{FullName: "Al", Phone: "12", City: "Denver", PostalCode: "123", Country: "US"}
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})

	next, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventAdvance, Now: quoteNow})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"shipping.fullName", "shipping.phone", "shipping.address", "shipping.postalCode"} {
		if _, ok := validation.Fields[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, validation.Fields)
		}
	}
	if _, ok := validation.Fields["shipping.city"]; ok {
		t.Fatalf("city was supplied and should not be reported")
	}
	if !reflect.DeepEqual(next, draft) {
		t.Fatalf("failed gate must return the unchanged draft")
	}
	if next.Step != domain.CheckoutStepShipping {
		t.Fatalf("expected shipping step, got %s", next.Step)
	}
}

func TestCheckoutFlowEmptyCartBlocksShippingGate(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft, err := flow.NewDraft("ord_empty", nil, quoteNow)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	shipping := validShipping()
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})

	_, err = flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventAdvance, Now: quoteNow})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := validation.Fields["items"]; !ok {
		t.Fatalf("expected items error, got %v", validation.Fields)
	}
}

func TestCheckoutFlowBackIsAlwaysAllowed(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	steps := []domain.CheckoutStep{
		domain.CheckoutStepPayment,
		domain.CheckoutStepDelivery,
		domain.CheckoutStepShipping,
		domain.CheckoutStepShipping,
	}
	for _, want := range steps {
		draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventBack})
		if draft.Step != want {
			t.Fatalf("expected %s after back, got %s", want, draft.Step)
		}
	}
	if draft.Payment.Method != domain.PaymentMethodCard {
		t.Fatalf("going back must keep entered data")
	}
}

func TestCheckoutFlowSameDayRequiresLocalZone(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft, err := flow.NewDraft("ord_zone", []domain.CartItem{{ProductID: "a", Price: dec("10"), Quantity: 1}}, quoteNow)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	shipping := validShipping()
	shipping.City = "Denver"
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})
	if draft.Zone != domain.ZoneNational {
		t.Fatalf("expected national zone, got %s", draft.Zone)
	}

	_, err = flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventSelectDelivery, Method: domain.ShippingMethodSameDay, Now: quoteNow})
	if !errors.Is(err, ErrInvalidMethodForZone) {
		t.Fatalf("expected invalid method for zone, got %v", err)
	}

	shipping.City = "Queens"
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventSelectDelivery, Method: "same_day", Slot: domain.TimeSlotMorning})
	if draft.Method != domain.ShippingMethodSameDay || draft.Quote == nil {
		t.Fatalf("expected same-day quote, got %+v", draft.Quote)
	}

	// Moving the destination out of the local zone drops the same-day selection.
	shipping.City = "Denver"
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventUpdateShipping, Shipping: &shipping})
	if draft.Method != "" || draft.Quote != nil {
		t.Fatalf("expected same-day selection cleared, got method %q", draft.Method)
	}
}

func TestCheckoutFlowCouponReplacesPrevious(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft, err := flow.NewDraft("ord_coupon", []domain.CartItem{{ProductID: "a", Price: dec("50"), Quantity: 1}}, quoteNow)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}

	first := domain.Coupon{Code: "FLAT5", Kind: domain.CouponKindFlat, Value: dec("5")}
	second := domain.Coupon{Code: "SAVE10", Kind: domain.CouponKindPercentage, Value: dec("10")}
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventApplyCoupon, Coupon: &first})
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventApplyCoupon, Coupon: &second})

	if draft.Coupon == nil || draft.Coupon.Code != "SAVE10" {
		t.Fatalf("expected SAVE10 to replace FLAT5, got %+v", draft.Coupon)
	}
	if !draft.Pricing.Discount.Equal(dec("5")) {
		t.Fatalf("expected a single 10%% discount of 5, got %s", draft.Pricing.Discount)
	}
	if got := domain.FormatMoney(draft.Pricing.Tax); got != "3.60" {
		t.Fatalf("expected tax 3.60, got %s", got)
	}

	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventRemoveCoupon})
	if draft.Coupon != nil || !draft.Pricing.Discount.IsZero() {
		t.Fatalf("expected coupon removed")
	}
}

func TestCheckoutFlowPlaceRejectsStaleTotal(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	shown := dec("120.00")
	next, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventPlace, ShownTotal: &shown, Now: quoteNow})
	var stale *StaleQuoteError
	if !errors.As(err, &stale) {
		t.Fatalf("expected stale quote error, got %v", err)
	}
	if !stale.Current.Equal(dec("129.6")) {
		t.Fatalf("expected current total 129.60, got %s", stale.Current)
	}
	if next.Step != domain.CheckoutStepReview {
		t.Fatalf("stale placement must leave the draft at review, got %s", next.Step)
	}

	within := dec("129.61")
	if _, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventPlace, ShownTotal: &within, Now: quoteNow}); err != nil {
		t.Fatalf("difference within tolerance should place: %v", err)
	}
}

func TestCheckoutFlowPlaceRejectsExpiredCoupon(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	expires := quoteNow.Add(time.Hour)
	coupon := domain.Coupon{Code: "HOUR", Kind: domain.CouponKindFlat, Value: dec("10"), ExpiresAt: &expires}
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventApplyCoupon, Coupon: &coupon})

	_, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventPlace, Now: quoteNow.Add(2 * time.Hour)})
	var couponErr *CouponError
	if !errors.As(err, &couponErr) || couponErr.Reason != CouponExpired {
		t.Fatalf("expected expired coupon error, got %v", err)
	}
}

func TestCheckoutFlowPaymentGate(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventBack})

	cod := domain.PaymentInfo{Method: domain.PaymentMethodCashOnDelivery, CardNumber: "4242424242424242"}
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventSelectPayment, Payment: &cod})
	_, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventAdvance, Now: quoteNow})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := validation.Fields["payment.cardNumber"]; !ok {
		t.Fatalf("expected card number error for cash on delivery, got %v", validation.Fields)
	}

	short := domain.PaymentInfo{Method: domain.PaymentMethodCard, CardNumber: "4242"}
	draft = mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventSelectPayment, Payment: &short})
	if _, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventAdvance, Now: quoteNow}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected short card number to fail, got %v", err)
	}
}

func TestCheckoutFlowReviewRequiresPlace(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	if _, err := flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventAdvance, Now: quoteNow}); !errors.Is(err, ErrCheckoutInvalidEvent) {
		t.Fatalf("expected invalid event, got %v", err)
	}

	early := mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventBack})
	if _, err := flow.Transition(early, CheckoutEvent{Kind: CheckoutEventPlace, Now: quoteNow}); !errors.Is(err, ErrCheckoutInvalidEvent) {
		t.Fatalf("expected place outside review to fail, got %v", err)
	}
}

func TestCheckoutFlowRepriceIsIdempotent(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)

	once, err := flow.Reprice(draft, quoteNow)
	if err != nil {
		t.Fatalf("Reprice: %v", err)
	}
	twice, err := flow.Reprice(once, quoteNow)
	if err != nil {
		t.Fatalf("Reprice again: %v", err)
	}
	if !samePricing(*once.Pricing, *twice.Pricing) {
		t.Fatalf("repricing twice changed the breakdown: %+v vs %+v", once.Pricing, twice.Pricing)
	}
	if !samePricing(*draft.Pricing, *once.Pricing) {
		t.Fatalf("repricing an up to date draft changed the breakdown")
	}
}

func TestBuildOrderFreezesPlacedDraft(t *testing.T) {
	flow := newTestCheckoutFlow(t)
	draft := draftAtReview(t, flow)
	placed := mustTransition(t, flow, draft, CheckoutEvent{Kind: CheckoutEventPlace})

	order, err := BuildOrder(placed, "NX-2024-000001")
	if err != nil {
		t.Fatalf("BuildOrder: %v", err)
	}
	if order.ID != "ord_test" || order.OrderNumber != "NX-2024-000001" {
		t.Fatalf("unexpected identifiers %s %s", order.ID, order.OrderNumber)
	}
	if order.Status != domain.OrderStatusPending || len(order.StatusHistory) != 1 {
		t.Fatalf("expected a single pending history entry, got %+v", order.StatusHistory)
	}
	if order.Payment.CardLast4 != "4242" {
		t.Fatalf("expected last four digits only, got %q", order.Payment.CardLast4)
	}
	if !order.Delivery.Earliest.Equal(placed.Quote.MinDate) || !order.Delivery.Latest.Equal(placed.Quote.MaxDate) {
		t.Fatalf("expected delivery window from quote")
	}

	placed.Items[0].Quantity = 99
	if order.Items[0].Quantity == 99 {
		t.Fatalf("order items must not alias the draft")
	}

	if _, err := BuildOrder(draft, "NX-2024-000002"); !errors.Is(err, ErrCheckoutInvalidEvent) {
		t.Fatalf("expected unplaced draft to be rejected, got %v", err)
	}
}

func samePricing(a, b domain.PricingBreakdown) bool {
	return a.Currency == b.Currency &&
		a.Subtotal.Equal(b.Subtotal) &&
		a.Discount.Equal(b.Discount) &&
		a.ShippingCost.Equal(b.ShippingCost) &&
		a.Tax.Equal(b.Tax) &&
		a.Total.Equal(b.Total) &&
		a.CouponCode == b.CouponCode &&
		a.FreeShippingApplied == b.FreeShippingApplied
}
