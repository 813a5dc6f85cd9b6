package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

const nonOperatingDay = time.Sunday

// ShippingQuoteCalculator turns a zone, method and slot into a cost and delivery window.
type ShippingQuoteCalculator struct {
	rates *RateTable
}

// NewShippingQuoteCalculator binds the calculator to a rate table.
func NewShippingQuoteCalculator(rates *RateTable) (*ShippingQuoteCalculator, error) {
	if rates == nil {
		return nil, errors.New("shipping quote calculator: rate table is required")
	}
	return &ShippingQuoteCalculator{rates: rates}, nil
}

// Rates exposes the underlying table.
func (c *ShippingQuoteCalculator) Rates() *RateTable {
	return c.rates
}

// MethodAvailable reports whether method can serve zone.
func MethodAvailable(zone domain.Zone, method domain.ShippingMethod) bool {
	if method == domain.ShippingMethodSameDay {
		return zone == domain.ZoneLocal
	}
	return true
}

// Quote prices a shipment. Same-day outside the local zone fails with InvalidMethodForZoneError.
func (c *ShippingQuoteCalculator) Quote(zone domain.Zone, method domain.ShippingMethod, slot domain.TimeSlot, cartSubtotal decimal.Decimal, now time.Time) (domain.ShippingQuote, error) {
	if _, ok := domain.ParseZone(string(zone)); !ok {
		return domain.ShippingQuote{}, fieldError("zone", "unknown shipping zone")
	}
	if _, ok := domain.ParseShippingMethod(string(method)); !ok {
		return domain.ShippingQuote{}, fieldError("method", "unknown shipping method")
	}
	if slot == "" {
		slot = domain.TimeSlotAny
	}
	if _, ok := domain.ParseTimeSlot(string(slot)); !ok {
		return domain.ShippingQuote{}, fieldError("slot", "unknown delivery time slot")
	}
	if !MethodAvailable(zone, method) {
		return domain.ShippingQuote{}, &InvalidMethodForZoneError{Zone: zone, Method: method}
	}

	rate := c.rates.RateFor(zone)
	cost := rate.BaseRate.Mul(c.rates.Multiplier(method)).Add(c.rates.Surcharge(slot))

	free := false
	if method == domain.ShippingMethodStandard &&
		zone != domain.ZoneInternational &&
		cartSubtotal.GreaterThanOrEqual(c.rates.FreeShippingThreshold()) {
		cost = decimal.Zero
		free = true
	}
	if cost.IsNegative() {
		cost = decimal.Zero
	}

	minDays, maxDays := transitDays(method, rate)

	quote := domain.ShippingQuote{
		Zone:                zone,
		Method:              method,
		Slot:                slot,
		Cost:                cost,
		MinDays:             minDays,
		MaxDays:             maxDays,
		FreeShippingApplied: free,
	}
	if method == domain.ShippingMethodSameDay {
		quote.MinDate = now
		quote.MaxDate = now
	} else {
		quote.MinDate = addOperatingDays(now, minDays)
		quote.MaxDate = addOperatingDays(now, maxDays)
	}
	return quote, nil
}

// Options quotes every method the zone can use, in display order.
func (c *ShippingQuoteCalculator) Options(zone domain.Zone, slot domain.TimeSlot, cartSubtotal decimal.Decimal, now time.Time) ([]domain.ShippingQuote, error) {
	quotes := make([]domain.ShippingQuote, 0, len(domain.ShippingMethods))
	for _, method := range domain.ShippingMethods {
		if !MethodAvailable(zone, method) {
			continue
		}
		quote, err := c.Quote(zone, method, slot, cartSubtotal, now)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func transitDays(method domain.ShippingMethod, rate domain.ZoneRate) (int, int) {
	switch method {
	case domain.ShippingMethodExpress:
		return ceilHalf(rate.MinDays), ceilHalf(rate.MaxDays)
	case domain.ShippingMethodSameDay:
		return 0, 0
	case domain.ShippingMethodPickup:
		return 1, 1
	default:
		return rate.MinDays, rate.MaxDays
	}
}

func ceilHalf(days int) int {
	return (days + 1) / 2
}

// addOperatingDays advances now by days, not counting the non-operating day.
func addOperatingDays(now time.Time, days int) time.Time {
	current := now
	for added := 0; added < days; {
		current = current.AddDate(0, 0, 1)
		if current.Weekday() != nonOperatingDay {
			added++
		}
	}
	return current
}
