package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// FulfillmentServiceDeps bundles the collaborators used for stateless previews.
type FulfillmentServiceDeps struct {
	Zones   *ZoneResolver
	Quotes  *ShippingQuoteCalculator
	Pricing *PricingAggregator
	Coupons *CouponEngine
	TaxRate decimal.Decimal
	Clock   func() time.Time
}

type fulfillmentService struct {
	zones   *ZoneResolver
	quotes  *ShippingQuoteCalculator
	pricing *PricingAggregator
	coupons *CouponEngine
	taxRate decimal.Decimal
	now     func() time.Time
}

// NewFulfillmentService validates deps. Coupons is optional; without it PriceCartCommand.CouponCode
// must be blank.
func NewFulfillmentService(deps FulfillmentServiceDeps) (FulfillmentService, error) {
	if deps.Zones == nil {
		return nil, errors.New("fulfillment service: zone resolver is required")
	}
	if deps.Quotes == nil {
		return nil, errors.New("fulfillment service: shipping quote calculator is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("fulfillment service: pricing aggregator is required")
	}
	if deps.TaxRate.IsNegative() {
		return nil, errors.New("fulfillment service: tax rate must not be negative")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &fulfillmentService{
		zones:   deps.Zones,
		quotes:  deps.Quotes,
		pricing: deps.Pricing,
		coupons: deps.Coupons,
		taxRate: deps.TaxRate,
		now: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *fulfillmentService) ResolveZone(country, city string) domain.Zone {
	return s.zones.Resolve(country, city)
}

func (s *fulfillmentService) Quote(_ context.Context, cmd ShippingQuoteCommand) (ShippingQuote, error) {
	if cmd.Subtotal.IsNegative() {
		return ShippingQuote{}, fieldError("subtotal", "must not be negative")
	}
	method, ok := domain.ParseShippingMethod(string(cmd.Method))
	if !ok {
		return ShippingQuote{}, fieldError("method", "unknown shipping method")
	}
	slot, ok := domain.ParseTimeSlot(string(cmd.Slot))
	if !ok {
		return ShippingQuote{}, fieldError("slot", "unknown delivery time slot")
	}
	zone := s.zones.Resolve(cmd.Country, cmd.City)
	return s.quotes.Quote(zone, method, slot, cmd.Subtotal, s.now())
}

func (s *fulfillmentService) Options(_ context.Context, cmd ShippingOptionsCommand) ([]ShippingQuote, error) {
	if cmd.Subtotal.IsNegative() {
		return nil, fieldError("subtotal", "must not be negative")
	}
	slot, ok := domain.ParseTimeSlot(string(cmd.Slot))
	if !ok {
		return nil, fieldError("slot", "unknown delivery time slot")
	}
	zone := s.zones.Resolve(cmd.Country, cmd.City)
	return s.quotes.Options(zone, slot, cmd.Subtotal, s.now())
}

func (s *fulfillmentService) Price(ctx context.Context, cmd PriceCartCommand) (PricingBreakdown, error) {
	if err := validateCartItems(cmd.Items); err != nil {
		return PricingBreakdown{}, err
	}
	now := s.now()
	subtotal := Subtotal(cmd.Items)
	zone := s.zones.Resolve(cmd.Country, cmd.City)

	quote := domain.ShippingQuote{Zone: zone, Slot: domain.TimeSlotAny}
	if strings.TrimSpace(string(cmd.Method)) != "" {
		method, ok := domain.ParseShippingMethod(string(cmd.Method))
		if !ok {
			return PricingBreakdown{}, fieldError("method", "unknown shipping method")
		}
		slot, ok := domain.ParseTimeSlot(string(cmd.Slot))
		if !ok {
			return PricingBreakdown{}, fieldError("slot", "unknown delivery time slot")
		}
		q, err := s.quotes.Quote(zone, method, slot, subtotal, now)
		if err != nil {
			return PricingBreakdown{}, err
		}
		quote = q
	}

	var coupon *domain.Coupon
	if code := strings.TrimSpace(cmd.CouponCode); code != "" {
		if s.coupons == nil {
			return PricingBreakdown{}, &CouponError{Reason: CouponUnknown, Code: domain.NormalizeCouponCode(code)}
		}
		resolved, err := s.coupons.Validate(ctx, code, subtotal, now)
		if err != nil {
			return PricingBreakdown{}, err
		}
		coupon = &resolved
	}

	return s.pricing.Compute(cmd.Items, quote, coupon, s.taxRate)
}
