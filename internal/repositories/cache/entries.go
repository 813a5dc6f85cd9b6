package cache

import (
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

type couponEntry struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MinSubtotal *decimal.Decimal `json:"minSubtotal,omitempty"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Description string           `json:"description,omitempty"`
}

func newCouponEntry(c domain.Coupon) couponEntry {
	return couponEntry{
		Code:        c.Code,
		Kind:        string(c.Kind),
		Value:       c.Value,
		MinSubtotal: c.MinSubtotal,
		ExpiresAt:   c.ExpiresAt,
		Description: c.Description,
	}
}

func (e couponEntry) toDomain() domain.Coupon {
	return domain.Coupon{
		Code:        e.Code,
		Kind:        domain.CouponKind(e.Kind),
		Value:       e.Value,
		MinSubtotal: e.MinSubtotal,
		ExpiresAt:   e.ExpiresAt,
		Description: e.Description,
	}
}
