package services

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("checkout: validation failed")
	// ErrCoupon is matched by every CouponError.
	ErrCoupon = errors.New("coupon: rejected")
	// ErrInvalidMethodForZone is matched by InvalidMethodForZoneError.
	ErrInvalidMethodForZone = errors.New("shipping: method not available for zone")
	// ErrInvalidTransition is matched by InvalidTransitionError.
	ErrInvalidTransition = errors.New("order: invalid status transition")
	// ErrStaleQuote is matched by StaleQuoteError.
	ErrStaleQuote = errors.New("checkout: quote is stale")
)

// ValidationError reports field-level failures. Fields maps a field path to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: maps.Clone(fields)}
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// CouponReason enumerates coupon rejection causes.
type CouponReason string

const (
	CouponUnknown       CouponReason = "unknown_coupon"
	CouponExpired       CouponReason = "expired_coupon"
	CouponMinimumNotMet CouponReason = "minimum_not_met"
)

// CouponError reports why a coupon cannot be redeemed.
type CouponError struct {
	Reason      CouponReason
	Code        string
	MinSubtotal *decimal.Decimal
}

func (e *CouponError) Error() string {
	switch e.Reason {
	case CouponExpired:
		return fmt.Sprintf("coupon %q has expired", e.Code)
	case CouponMinimumNotMet:
		if e.MinSubtotal != nil {
			return fmt.Sprintf("coupon %q requires a subtotal of at least %s", e.Code, domain.FormatMoney(*e.MinSubtotal))
		}
		return fmt.Sprintf("coupon %q minimum subtotal not met", e.Code)
	default:
		return fmt.Sprintf("coupon %q is not recognised", e.Code)
	}
}

func (e *CouponError) Is(target error) bool {
	return target == ErrCoupon
}

// InvalidMethodForZoneError is returned when a shipping method cannot serve a zone.
type InvalidMethodForZoneError struct {
	Zone   domain.Zone
	Method domain.ShippingMethod
}

func (e *InvalidMethodForZoneError) Error() string {
	return fmt.Sprintf("%s: %s is not offered for %s", ErrInvalidMethodForZone.Error(), e.Method, e.Zone)
}

func (e *InvalidMethodForZoneError) Is(target error) bool {
	return target == ErrInvalidMethodForZone
}

// InvalidTransitionError reports a rejected order status change.
type InvalidTransitionError struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s → %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StaleQuoteError is returned at placement when the recomputed total moved beyond tolerance.
type StaleQuoteError struct {
	Shown   decimal.Decimal
	Current decimal.Decimal
}

func (e *StaleQuoteError) Error() string {
	return fmt.Sprintf("%s: shown %s, current %s", ErrStaleQuote.Error(), domain.FormatMoney(e.Shown), domain.FormatMoney(e.Current))
}

func (e *StaleQuoteError) Is(target error) bool {
	return target == ErrStaleQuote
}
