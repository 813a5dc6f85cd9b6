package services

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/textutil"
)

const maxNotesLength = 500

var (
	// ErrCheckoutDraftPlaced is returned for any event sent to a placed draft.
	ErrCheckoutDraftPlaced = errors.New("checkout: draft already placed")
	// ErrCheckoutInvalidEvent is returned for events that make no sense in the current step.
	ErrCheckoutInvalidEvent = errors.New("checkout: event not allowed in current step")
)

// CheckoutEventKind enumerates the inputs accepted by CheckoutFlow.Transition.
type CheckoutEventKind string

const (
	CheckoutEventSetItems       CheckoutEventKind = "set_items"
	CheckoutEventUpdateShipping CheckoutEventKind = "update_shipping"
	CheckoutEventSelectDelivery CheckoutEventKind = "select_delivery"
	CheckoutEventSelectPayment  CheckoutEventKind = "select_payment"
	CheckoutEventApplyCoupon    CheckoutEventKind = "apply_coupon"
	CheckoutEventRemoveCoupon   CheckoutEventKind = "remove_coupon"
	CheckoutEventUpdateNotes    CheckoutEventKind = "update_notes"
	CheckoutEventAdvance        CheckoutEventKind = "advance"
	CheckoutEventBack           CheckoutEventKind = "back"
	CheckoutEventPlace          CheckoutEventKind = "place"
)

// CheckoutEvent is one input to the checkout state machine. Only the fields relevant to Kind
// are read. Coupons must already be resolved through the CouponEngine.
type CheckoutEvent struct {
	Kind       CheckoutEventKind
	Items      []domain.CartItem
	Shipping   *domain.ShippingInfo
	Method     domain.ShippingMethod
	Slot       domain.TimeSlot
	Payment    *domain.PaymentInfo
	Coupon     *domain.Coupon
	Notes      string
	ShownTotal *decimal.Decimal
	Now        time.Time
}

// CheckoutFlowDeps bundles the pure collaborators of the flow.
type CheckoutFlowDeps struct {
	Zones          *ZoneResolver
	Quotes         *ShippingQuoteCalculator
	Pricing        *PricingAggregator
	Rules          FieldRules
	TaxRate        decimal.Decimal
	StaleTolerance decimal.Decimal
}

// CheckoutFlow is the Shipping → Delivery → Payment → Review → Placed state machine.
// Transition never mutates its input and performs no I/O.
type CheckoutFlow struct {
	zones     *ZoneResolver
	quotes    *ShippingQuoteCalculator
	pricing   *PricingAggregator
	rules     FieldRules
	taxRate   decimal.Decimal
	tolerance decimal.Decimal
}

// NewCheckoutFlow validates deps.
func NewCheckoutFlow(deps CheckoutFlowDeps) (*CheckoutFlow, error) {
	if deps.Zones == nil {
		return nil, errors.New("checkout flow: zone resolver is required")
	}
	if deps.Quotes == nil {
		return nil, errors.New("checkout flow: shipping quote calculator is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("checkout flow: pricing aggregator is required")
	}
	if deps.TaxRate.IsNegative() {
		return nil, errors.New("checkout flow: tax rate must not be negative")
	}
	if deps.StaleTolerance.IsNegative() {
		return nil, errors.New("checkout flow: stale tolerance must not be negative")
	}
	rules := deps.Rules
	if rules.HomeCountry == "" {
		rules.HomeCountry = deps.Zones.HomeCountry()
	}
	return &CheckoutFlow{
		zones:     deps.Zones,
		quotes:    deps.Quotes,
		pricing:   deps.Pricing,
		rules:     rules.withDefaults(),
		taxRate:   deps.TaxRate,
		tolerance: deps.StaleTolerance,
	}, nil
}

// TaxRate returns the configured tax rate.
func (f *CheckoutFlow) TaxRate() decimal.Decimal {
	return f.taxRate
}

// NewDraft starts a checkout at the shipping step.
func (f *CheckoutFlow) NewDraft(id string, items []domain.CartItem, now time.Time) (domain.OrderDraft, error) {
	draft := domain.OrderDraft{
		ID:        id,
		Step:      domain.CheckoutStepShipping,
		Currency:  f.pricing.Currency(),
		Slot:      domain.TimeSlotAny,
		Zone:      f.zones.Resolve("", ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return f.Transition(draft, CheckoutEvent{Kind: CheckoutEventSetItems, Items: items, Now: now})
}

// Transition applies event to draft and returns the new draft. On error the returned draft is
// the unchanged input.
func (f *CheckoutFlow) Transition(draft domain.OrderDraft, event CheckoutEvent) (domain.OrderDraft, error) {
	if draft.Step == domain.CheckoutStepPlaced {
		return draft, ErrCheckoutDraftPlaced
	}
	next := draft.Clone()
	now := event.Now

	switch event.Kind {
	case CheckoutEventSetItems:
		if err := validateCartItems(event.Items); err != nil {
			return draft, err
		}
		next.Items = slices.Clone(event.Items)
	case CheckoutEventUpdateShipping:
		if event.Shipping == nil {
			return draft, fieldError("shipping", "is required")
		}
		sanitized, _ := f.rules.SanitizeShipping(*event.Shipping)
		next.Shipping = sanitized
		next.Zone = f.zones.Resolve(sanitized.Country, sanitized.City)
		if next.Method != "" && !MethodAvailable(next.Zone, next.Method) {
			next.Method = ""
			next.Quote = nil
		}
	case CheckoutEventSelectDelivery:
		method, ok := domain.ParseShippingMethod(string(event.Method))
		if !ok {
			return draft, fieldError("delivery.method", "unknown shipping method")
		}
		slot, ok := domain.ParseTimeSlot(string(event.Slot))
		if !ok {
			return draft, fieldError("delivery.slot", "unknown delivery time slot")
		}
		if !MethodAvailable(next.Zone, method) {
			return draft, &InvalidMethodForZoneError{Zone: next.Zone, Method: method}
		}
		next.Method = method
		next.Slot = slot
	case CheckoutEventSelectPayment:
		if event.Payment == nil {
			return draft, fieldError("payment", "is required")
		}
		sanitized, _ := f.rules.SanitizePayment(*event.Payment)
		next.Payment = sanitized
	case CheckoutEventApplyCoupon:
		if event.Coupon == nil {
			return draft, fieldError("coupon", "is required")
		}
		coupon := *event.Coupon
		// A new coupon replaces the previous one.
		next.Coupon = &coupon
	case CheckoutEventRemoveCoupon:
		next.Coupon = nil
	case CheckoutEventUpdateNotes:
		notes := textutil.StripMarkup(event.Notes)
		if utf8.RuneCountInString(notes) > maxNotesLength {
			return draft, fieldError("notes", fmt.Sprintf("must be at most %d characters", maxNotesLength))
		}
		next.Notes = notes
	case CheckoutEventAdvance:
		return f.advance(draft, next, now)
	case CheckoutEventBack:
		next.Step = previousStep(next.Step)
	case CheckoutEventPlace:
		return f.place(draft, next, event)
	default:
		return draft, fmt.Errorf("%w: %q", ErrCheckoutInvalidEvent, event.Kind)
	}

	if err := f.reprice(&next, now); err != nil {
		return draft, err
	}
	next.UpdatedAt = now
	return next, nil
}

func (f *CheckoutFlow) advance(original, next domain.OrderDraft, now time.Time) (domain.OrderDraft, error) {
	var fields map[string]string
	switch next.Step {
	case domain.CheckoutStepShipping:
		next.Shipping, fields = f.shippingGate(next)
	case domain.CheckoutStepDelivery:
		fields = f.deliveryGate(next)
	case domain.CheckoutStepPayment:
		next.Payment, fields = f.rules.SanitizePayment(next.Payment)
	case domain.CheckoutStepReview:
		return original, fmt.Errorf("%w: review is submitted with place", ErrCheckoutInvalidEvent)
	}
	if err := newValidationError(fields); err != nil {
		return original, err
	}
	if err := f.reprice(&next, now); err != nil {
		return original, err
	}
	next.Step = nextStep(next.Step)
	next.UpdatedAt = now
	return next, nil
}

func (f *CheckoutFlow) place(original, next domain.OrderDraft, event CheckoutEvent) (domain.OrderDraft, error) {
	if next.Step != domain.CheckoutStepReview {
		return original, fmt.Errorf("%w: place requires the review step", ErrCheckoutInvalidEvent)
	}

	fields := map[string]string{}
	var shippingFields, paymentFields map[string]string
	next.Shipping, shippingFields = f.shippingGate(next)
	next.Payment, paymentFields = f.rules.SanitizePayment(next.Payment)
	maps.Copy(fields, shippingFields)
	maps.Copy(fields, f.deliveryGate(next))
	maps.Copy(fields, paymentFields)
	if err := newValidationError(fields); err != nil {
		return original, err
	}

	if next.Coupon != nil {
		if err := CheckCoupon(*next.Coupon, Subtotal(next.Items), event.Now); err != nil {
			return original, err
		}
	}

	var shown decimal.Decimal
	switch {
	case event.ShownTotal != nil:
		shown = *event.ShownTotal
	case original.Pricing != nil:
		shown = original.Pricing.Total
	default:
		return original, fieldError("pricing", "is missing; refresh the review step")
	}

	if err := f.reprice(&next, event.Now); err != nil {
		return original, err
	}
	current := next.Pricing.Rounded().Total
	if domain.RoundMoney(shown).Sub(current).Abs().GreaterThan(f.tolerance) {
		return original, &StaleQuoteError{Shown: domain.RoundMoney(shown), Current: current}
	}

	placedAt := event.Now
	next.Step = domain.CheckoutStepPlaced
	next.PlacedAt = &placedAt
	next.UpdatedAt = placedAt
	return next, nil
}

func (f *CheckoutFlow) shippingGate(draft domain.OrderDraft) (domain.ShippingInfo, map[string]string) {
	sanitized, fields := f.rules.SanitizeShipping(draft.Shipping)
	if len(draft.Items) == 0 {
		fields["items"] = "cart is empty"
	}
	return sanitized, fields
}

func (f *CheckoutFlow) deliveryGate(draft domain.OrderDraft) map[string]string {
	fields := map[string]string{}
	if draft.Method == "" {
		fields["delivery.method"] = "select a shipping method"
		return fields
	}
	if !MethodAvailable(draft.Zone, draft.Method) {
		fields["delivery.method"] = fmt.Sprintf("%s is not offered for %s destinations", draft.Method, draft.Zone)
	}
	if _, ok := domain.ParseTimeSlot(string(draft.Slot)); !ok {
		fields["delivery.slot"] = "unknown delivery time slot"
	}
	return fields
}

// reprice recomputes the quote and pricing. A coupon that no longer passes its rules stays on
// the draft but contributes no discount; placement rejects it.
func (f *CheckoutFlow) reprice(draft *domain.OrderDraft, now time.Time) error {
	subtotal := Subtotal(draft.Items)

	quote := domain.ShippingQuote{Zone: draft.Zone, Slot: draft.Slot}
	if draft.Method != "" {
		q, err := f.quotes.Quote(draft.Zone, draft.Method, draft.Slot, subtotal, now)
		if err != nil {
			return err
		}
		quote = q
		draft.Quote = &q
	} else {
		draft.Quote = nil
	}

	var coupon *domain.Coupon
	if draft.Coupon != nil && CheckCoupon(*draft.Coupon, subtotal, now) == nil {
		coupon = draft.Coupon
	}

	pricing, err := f.pricing.Compute(draft.Items, quote, coupon, f.taxRate)
	if err != nil {
		return err
	}
	draft.Pricing = &pricing
	return nil
}

// Reprice recomputes a draft without changing its step.
func (f *CheckoutFlow) Reprice(draft domain.OrderDraft, now time.Time) (domain.OrderDraft, error) {
	next := draft.Clone()
	if err := f.reprice(&next, now); err != nil {
		return draft, err
	}
	return next, nil
}

// BuildOrder freezes a placed draft into an Order in pending status.
func BuildOrder(draft domain.OrderDraft, orderNumber string) (domain.Order, error) {
	if draft.Step != domain.CheckoutStepPlaced || draft.PlacedAt == nil {
		return domain.Order{}, fmt.Errorf("%w: draft is not placed", ErrCheckoutInvalidEvent)
	}
	if draft.Pricing == nil || draft.Quote == nil {
		return domain.Order{}, fmt.Errorf("%w: draft has no pricing", ErrCheckoutInvalidEvent)
	}
	placedAt := *draft.PlacedAt
	payment := domain.PaymentSummary{Method: draft.Payment.Method}
	if draft.Payment.Method == domain.PaymentMethodCard {
		payment.CardLast4 = lastFour(draft.Payment.CardNumber)
	}
	return domain.Order{
		ID:               draft.ID,
		OrderNumber:      orderNumber,
		Currency:         draft.Pricing.Currency,
		Items:            slices.Clone(draft.Items),
		Pricing:          *draft.Pricing,
		Shipping:         draft.Shipping,
		Zone:             draft.Zone,
		ShippingMethod:   draft.Method,
		DeliveryTimeSlot: draft.Slot,
		Delivery: domain.DeliveryWindow{
			Earliest: draft.Quote.MinDate,
			Latest:   draft.Quote.MaxDate,
		},
		Payment: payment,
		Notes:   draft.Notes,
		Status:  domain.OrderStatusPending,
		StatusHistory: []domain.StatusEntry{
			{Status: domain.OrderStatusPending, At: placedAt},
		},
		PlacedAt:  placedAt,
		UpdatedAt: placedAt,
	}, nil
}

func nextStep(step domain.CheckoutStep) domain.CheckoutStep {
	idx := slices.Index(domain.CheckoutSteps, step)
	if idx < 0 || idx >= len(domain.CheckoutSteps)-1 {
		return step
	}
	return domain.CheckoutSteps[idx+1]
}

func previousStep(step domain.CheckoutStep) domain.CheckoutStep {
	idx := slices.Index(domain.CheckoutSteps, step)
	if idx <= 0 {
		return step
	}
	return domain.CheckoutSteps[idx-1]
}
