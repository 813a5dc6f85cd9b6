package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CouponKind selects how a coupon value is interpreted.
type CouponKind string

const (
	// CouponKindFlat subtracts a fixed amount.
	CouponKindFlat CouponKind = "flat"
	// CouponKindPercentage subtracts value percent (0-100) of the subtotal.
	CouponKindPercentage CouponKind = "percentage"
)

// Coupon is a redeemable discount code.
type Coupon struct {
	Code        string
	Kind        CouponKind
	Value       decimal.Decimal
	MinSubtotal *decimal.Decimal
	ExpiresAt   *time.Time
	Description string
}

// NormalizeCouponCode trims and upper-cases a user supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
