package services

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// RateTableConfig holds the static shipping price data. Missing entries fall back to
// DefaultRateTableConfig.
type RateTableConfig struct {
	Rates                 map[domain.Zone]domain.ZoneRate
	MethodMultipliers     map[domain.ShippingMethod]decimal.Decimal
	SlotSurcharges        map[domain.TimeSlot]decimal.Decimal
	FreeShippingThreshold *decimal.Decimal
}

// DefaultRateTableConfig returns the built-in rates.
func DefaultRateTableConfig() RateTableConfig {
	threshold := decimal.NewFromInt(100)
	return RateTableConfig{
		Rates: map[domain.Zone]domain.ZoneRate{
			domain.ZoneLocal:         {BaseRate: decimal.NewFromInt(5), MinDays: 1, MaxDays: 2},
			domain.ZoneRegional:      {BaseRate: decimal.NewFromInt(8), MinDays: 2, MaxDays: 4},
			domain.ZoneNational:      {BaseRate: decimal.NewFromInt(12), MinDays: 3, MaxDays: 6},
			domain.ZoneInternational: {BaseRate: decimal.NewFromInt(30), MinDays: 7, MaxDays: 14},
		},
		MethodMultipliers: map[domain.ShippingMethod]decimal.Decimal{
			domain.ShippingMethodStandard: decimal.NewFromInt(1),
			domain.ShippingMethodExpress:  decimal.RequireFromString("1.5"),
			domain.ShippingMethodSameDay:  decimal.RequireFromString("2.5"),
			domain.ShippingMethodPickup:   decimal.Zero,
		},
		SlotSurcharges: map[domain.TimeSlot]decimal.Decimal{
			domain.TimeSlotAny:       decimal.Zero,
			domain.TimeSlotMorning:   decimal.NewFromInt(2),
			domain.TimeSlotAfternoon: decimal.NewFromInt(1),
			domain.TimeSlotEvening:   decimal.NewFromInt(3),
		},
		FreeShippingThreshold: &threshold,
	}
}

// RateTable is the single source of shipping price data shared by quoting and placement.
type RateTable struct {
	rates       map[domain.Zone]domain.ZoneRate
	multipliers map[domain.ShippingMethod]decimal.Decimal
	surcharges  map[domain.TimeSlot]decimal.Decimal
	threshold   decimal.Decimal
}

// NewRateTable validates cfg and merges it over the defaults.
func NewRateTable(cfg RateTableConfig) (*RateTable, error) {
	def := DefaultRateTableConfig()
	table := &RateTable{
		rates:       maps.Clone(def.Rates),
		multipliers: maps.Clone(def.MethodMultipliers),
		surcharges:  maps.Clone(def.SlotSurcharges),
		threshold:   *def.FreeShippingThreshold,
	}

	for zone, rate := range cfg.Rates {
		if _, ok := domain.ParseZone(string(zone)); !ok {
			return nil, fmt.Errorf("rate table: unknown zone %q", zone)
		}
		if rate.BaseRate.IsNegative() {
			return nil, fmt.Errorf("rate table: base rate for %s must not be negative", zone)
		}
		if rate.MinDays < 0 || rate.MaxDays < rate.MinDays {
			return nil, fmt.Errorf("rate table: invalid transit window %d-%d for %s", rate.MinDays, rate.MaxDays, zone)
		}
		table.rates[zone] = rate
	}
	for method, multiplier := range cfg.MethodMultipliers {
		if _, ok := domain.ParseShippingMethod(string(method)); !ok {
			return nil, fmt.Errorf("rate table: unknown shipping method %q", method)
		}
		if multiplier.IsNegative() {
			return nil, fmt.Errorf("rate table: multiplier for %s must not be negative", method)
		}
		table.multipliers[method] = multiplier
	}
	for slot, surcharge := range cfg.SlotSurcharges {
		if _, ok := domain.ParseTimeSlot(string(slot)); !ok {
			return nil, fmt.Errorf("rate table: unknown time slot %q", slot)
		}
		if surcharge.IsNegative() {
			return nil, fmt.Errorf("rate table: surcharge for %s must not be negative", slot)
		}
		table.surcharges[slot] = surcharge
	}
	if cfg.FreeShippingThreshold != nil {
		if cfg.FreeShippingThreshold.IsNegative() {
			return nil, errors.New("rate table: free shipping threshold must not be negative")
		}
		table.threshold = *cfg.FreeShippingThreshold
	}
	return table, nil
}

// RateFor returns the base rate and transit window for zone.
func (t *RateTable) RateFor(zone domain.Zone) domain.ZoneRate {
	if rate, ok := t.rates[zone]; ok {
		return rate
	}
	return t.rates[domain.ZoneNational]
}

// FreeShippingThreshold returns the subtotal at or above which standard shipping is free.
func (t *RateTable) FreeShippingThreshold() decimal.Decimal {
	return t.threshold
}

// Multiplier returns the rate multiplier for method.
func (t *RateTable) Multiplier(method domain.ShippingMethod) decimal.Decimal {
	return t.multipliers[method]
}

// Surcharge returns the time-slot surcharge; unknown slots cost nothing.
func (t *RateTable) Surcharge(slot domain.TimeSlot) decimal.Decimal {
	if v, ok := t.surcharges[slot]; ok {
		return v
	}
	return decimal.Zero
}
