package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// PricingAggregator combines cart lines, a shipping quote, an optional coupon and a tax rate into
// a PricingBreakdown. It is deterministic and side-effect free, so callers recompute on every
// draft mutation instead of caching.
type PricingAggregator struct {
	currency string
}

// NewPricingAggregator returns an aggregator producing breakdowns in currency.
func NewPricingAggregator(currency string) *PricingAggregator {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PricingAggregator{currency: currency}
}

// Currency returns the ISO code stamped on breakdowns.
func (a *PricingAggregator) Currency() string {
	return a.currency
}

// Compute runs subtotal, discount, taxable amount, tax and total in that order. Amounts keep full
// precision; use PricingBreakdown.Rounded at the display boundary.
func (a *PricingAggregator) Compute(items []domain.CartItem, quote domain.ShippingQuote, coupon *domain.Coupon, taxRate decimal.Decimal) (domain.PricingBreakdown, error) {
	if err := validateCartItems(items); err != nil {
		return domain.PricingBreakdown{}, err
	}
	if taxRate.IsNegative() {
		return domain.PricingBreakdown{}, fieldError("taxRate", "must not be negative")
	}
	if quote.Cost.IsNegative() {
		return domain.PricingBreakdown{}, fieldError("shippingCost", "must not be negative")
	}

	subtotal := Subtotal(items)

	discount := decimal.Zero
	couponCode := ""
	if coupon != nil {
		discount = ApplyCoupon(*coupon, subtotal)
		couponCode = coupon.Code
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate)
	total := subtotal.Sub(discount).Add(quote.Cost).Add(tax)

	return domain.PricingBreakdown{
		Currency:            a.currency,
		Subtotal:            subtotal,
		Discount:            discount,
		ShippingCost:        quote.Cost,
		Tax:                 tax,
		Total:               total,
		TaxRate:             taxRate,
		CouponCode:          couponCode,
		FreeShippingApplied: quote.FreeShippingApplied,
	}, nil
}

// Subtotal sums price * quantity over items.
func Subtotal(items []domain.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func validateCartItems(items []domain.CartItem) error {
	fields := map[string]string{}
	for i, item := range items {
		if item.Price.IsNegative() {
			fields[fmt.Sprintf("items[%d].price", i)] = "must not be negative"
		}
		if item.Quantity < 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must not be negative"
		}
	}
	return newValidationError(fields)
}
