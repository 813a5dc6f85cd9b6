package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Zone classifies a destination for shipping rates.
type Zone string

const (
	// ZoneLocal covers the fulfillment centre's own metro area.
	ZoneLocal Zone = "local"
	// ZoneRegional covers nearby cities reachable by ground within a few days.
	ZoneRegional Zone = "regional"
	// ZoneNational covers every other home-country destination.
	ZoneNational Zone = "national"
	// ZoneInternational covers destinations outside the home country.
	ZoneInternational Zone = "international"
)

// Zones lists every zone in ascending distance order.
var Zones = []Zone{ZoneLocal, ZoneRegional, ZoneNational, ZoneInternational}

// ParseZone normalises raw input into a Zone.
func ParseZone(raw string) (Zone, bool) {
	zone := Zone(strings.ToLower(strings.TrimSpace(raw)))
	switch zone {
	case ZoneLocal, ZoneRegional, ZoneNational, ZoneInternational:
		return zone, true
	}
	return "", false
}

// ShippingMethod enumerates the delivery speeds offered at checkout.
type ShippingMethod string

const (
	ShippingMethodStandard ShippingMethod = "standard"
	ShippingMethodExpress  ShippingMethod = "express"
	ShippingMethodSameDay  ShippingMethod = "same-day"
	ShippingMethodPickup   ShippingMethod = "pickup"
)

// ShippingMethods lists methods in the order they are offered.
var ShippingMethods = []ShippingMethod{
	ShippingMethodStandard,
	ShippingMethodExpress,
	ShippingMethodSameDay,
	ShippingMethodPickup,
}

// ParseShippingMethod accepts the canonical names plus the underscore spelling of same-day.
func ParseShippingMethod(raw string) (ShippingMethod, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	method := ShippingMethod(normalized)
	switch method {
	case ShippingMethodStandard, ShippingMethodExpress, ShippingMethodSameDay, ShippingMethodPickup:
		return method, true
	}
	return "", false
}

// TimeSlot is the delivery window requested by the customer.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
	TimeSlotAny       TimeSlot = "any"
)

// TimeSlots lists the supported delivery windows.
var TimeSlots = []TimeSlot{TimeSlotAny, TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening}

// ParseTimeSlot normalises raw input; an empty value selects TimeSlotAny.
func ParseTimeSlot(raw string) (TimeSlot, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return TimeSlotAny, true
	}
	slot := TimeSlot(normalized)
	switch slot {
	case TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening, TimeSlotAny:
		return slot, true
	}
	return "", false
}

// ZoneRate is the base shipping price and transit window for a zone.
type ZoneRate struct {
	BaseRate decimal.Decimal
	MinDays  int
	MaxDays  int
}

// ShippingQuote is a computed, not yet committed shipping cost and delivery estimate.
type ShippingQuote struct {
	Zone                Zone
	Method              ShippingMethod
	Slot                TimeSlot
	Cost                decimal.Decimal
	MinDays             int
	MaxDays             int
	MinDate             time.Time
	MaxDate             time.Time
	FreeShippingApplied bool
}
