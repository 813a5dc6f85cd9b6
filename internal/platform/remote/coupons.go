package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// CouponClient reads coupons from the external coupon store.
type CouponClient struct {
	*client
}

var _ repositories.CouponRepository = (*CouponClient)(nil)

type couponPayload struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MinSubtotal *decimal.Decimal `json:"minSubtotal,omitempty"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Description string           `json:"description,omitempty"`
}

// NewCouponClient builds a coupon store client. opts.Name defaults to "coupon_store".
func NewCouponClient(opts Options) (*CouponClient, error) {
	if opts.Name == "" {
		opts.Name = "coupon_store"
	}
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &CouponClient{client: c}, nil
}

// FindByCode issues GET /coupons/{code}. A 404 maps to a not-found RepositoryError.
func (c *CouponClient) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	normalized := domain.NormalizeCouponCode(code)
	if normalized == "" {
		return domain.Coupon{}, repositories.NewError("coupon_store.get", repositories.ErrorKindNotFound, fmt.Errorf("coupon code is empty"))
	}

	resp, err := c.execute(ctx, "get", func(req *resty.Request) (*resty.Response, error) {
		return req.SetPathParam("code", normalized).Get("/coupons/{code}")
	})
	if err != nil {
		return domain.Coupon{}, err
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.Coupon{}, repositories.NewError("coupon_store.get", repositories.ErrorKindNotFound, fmt.Errorf("coupon %s not found", normalized))
	default:
		return domain.Coupon{}, c.statusError("get", resp)
	}

	var payload couponPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return domain.Coupon{}, fmt.Errorf("coupon_store get: decode response: %w", err)
	}
	kind := domain.CouponKind(payload.Kind)
	if kind != domain.CouponKindFlat && kind != domain.CouponKindPercentage {
		return domain.Coupon{}, fmt.Errorf("coupon_store get: unsupported coupon kind %q", payload.Kind)
	}
	coupon := domain.Coupon{
		Code:        domain.NormalizeCouponCode(payload.Code),
		Kind:        kind,
		Value:       payload.Value,
		MinSubtotal: payload.MinSubtotal,
		ExpiresAt:   payload.ExpiresAt,
		Description: payload.Description,
	}
	if coupon.Code == "" {
		coupon.Code = normalized
	}
	return coupon, nil
}
