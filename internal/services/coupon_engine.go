package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// ErrCouponLookupUnavailable indicates the coupon store could not be reached. It is not a
// CouponError: the coupon may well be valid.
var ErrCouponLookupUnavailable = errors.New("coupon: lookup unavailable")

// CouponEngineDeps bundles collaborators for the coupon engine.
type CouponEngineDeps struct {
	Coupons repositories.CouponRepository
	Logger  func(ctx context.Context, event string, fields map[string]any)
}

// CouponEngine validates coupon codes and computes discounts.
type CouponEngine struct {
	coupons repositories.CouponRepository
	logger  func(context.Context, string, map[string]any)
}

// NewCouponEngine wires the coupon store into an engine.
func NewCouponEngine(deps CouponEngineDeps) (*CouponEngine, error) {
	if deps.Coupons == nil {
		return nil, errors.New("coupon engine: coupon repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CouponEngine{coupons: deps.Coupons, logger: logger}, nil
}

// Validate looks code up and checks it against the cart. Lookups are read-only and safe to retry.
func (e *CouponEngine) Validate(ctx context.Context, code string, cartSubtotal decimal.Decimal, now time.Time) (domain.Coupon, error) {
	normalized := domain.NormalizeCouponCode(code)
	if normalized == "" {
		return domain.Coupon{}, &CouponError{Reason: CouponUnknown, Code: normalized}
	}

	coupon, err := e.coupons.FindByCode(ctx, normalized)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) {
			switch {
			case repoErr.IsNotFound():
				return domain.Coupon{}, &CouponError{Reason: CouponUnknown, Code: normalized}
			case repoErr.IsUnavailable():
				e.logger(ctx, "coupon.lookup.unavailable", map[string]any{
					"code":  normalized,
					"error": err.Error(),
				})
				return domain.Coupon{}, fmt.Errorf("%w: %v", ErrCouponLookupUnavailable, err)
			}
		}
		return domain.Coupon{}, err
	}
	coupon.Code = domain.NormalizeCouponCode(coupon.Code)
	if coupon.Code == "" {
		coupon.Code = normalized
	}

	if err := CheckCoupon(coupon, cartSubtotal, now); err != nil {
		return domain.Coupon{}, err
	}
	return coupon, nil
}

// CheckCoupon applies the expiry and minimum subtotal rules to an already resolved coupon.
func CheckCoupon(coupon domain.Coupon, cartSubtotal decimal.Decimal, now time.Time) error {
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return &CouponError{Reason: CouponExpired, Code: coupon.Code}
	}
	if coupon.MinSubtotal != nil && cartSubtotal.LessThan(*coupon.MinSubtotal) {
		minimum := *coupon.MinSubtotal
		return &CouponError{Reason: CouponMinimumNotMet, Code: coupon.Code, MinSubtotal: &minimum}
	}
	switch coupon.Kind {
	case domain.CouponKindFlat, domain.CouponKindPercentage:
	default:
		return &CouponError{Reason: CouponUnknown, Code: coupon.Code}
	}
	return nil
}

// ApplyCoupon returns the discount for coupon against cartSubtotal, bounded to [0, subtotal].
func ApplyCoupon(coupon domain.Coupon, cartSubtotal decimal.Decimal) decimal.Decimal {
	ceiling := decimal.Max(cartSubtotal, decimal.Zero)
	var discount decimal.Decimal
	switch coupon.Kind {
	case domain.CouponKindFlat:
		discount = decimal.Min(coupon.Value, ceiling)
	case domain.CouponKindPercentage:
		discount = domain.Percent(ceiling, coupon.Value)
	default:
		return decimal.Zero
	}
	return domain.ClampMoney(discount, decimal.Zero, ceiling)
}
