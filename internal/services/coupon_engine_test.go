package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

type stubCouponRepository struct {
	findFn func(context.Context, string) (domain.Coupon, error)
	codes  []string
}

func (s *stubCouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	s.codes = append(s.codes, code)
	if s.findFn != nil {
		return s.findFn(ctx, code)
	}
	return domain.Coupon{}, repositories.NewError("coupons.find", repositories.ErrorKindNotFound, errors.New("missing"))
}

func couponCatalog(coupons ...domain.Coupon) *stubCouponRepository {
	byCode := make(map[string]domain.Coupon, len(coupons))
	for _, coupon := range coupons {
		byCode[coupon.Code] = coupon
	}
	return &stubCouponRepository{
		findFn: func(_ context.Context, code string) (domain.Coupon, error) {
			if coupon, ok := byCode[code]; ok {
				return coupon, nil
			}
			return domain.Coupon{}, repositories.NewError("coupons.find", repositories.ErrorKindNotFound, errors.New("missing"))
		},
	}
}

func TestApplyCouponDiscounts(t *testing.T) {
	cases := []struct {
		name     string
		coupon   domain.Coupon
		subtotal string
		want     string
	}{
		{"flat capped at subtotal", domain.Coupon{Kind: domain.CouponKindFlat, Value: dec("1000")}, "30", "30"},
		{"flat below subtotal", domain.Coupon{Kind: domain.CouponKindFlat, Value: dec("5")}, "30", "5"},
		{"percentage", domain.Coupon{Kind: domain.CouponKindPercentage, Value: dec("10")}, "50", "5"},
		{"percentage above hundred clamps", domain.Coupon{Kind: domain.CouponKindPercentage, Value: dec("150")}, "40", "40"},
		{"negative percentage clamps to zero", domain.Coupon{Kind: domain.CouponKindPercentage, Value: dec("-5")}, "40", "0"},
		{"empty cart", domain.Coupon{Kind: domain.CouponKindFlat, Value: dec("5")}, "0", "0"},
		{"unknown kind", domain.Coupon{Kind: "bogo", Value: dec("5")}, "30", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyCoupon(tc.coupon, dec(tc.subtotal))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("expected discount %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCouponEngineValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	minimum := dec("50")

	repo := couponCatalog(
		domain.Coupon{Code: "SAVE10", Kind: domain.CouponKindPercentage, Value: dec("10"), ExpiresAt: &future},
		domain.Coupon{Code: "OLD", Kind: domain.CouponKindFlat, Value: dec("5"), ExpiresAt: &past},
		domain.Coupon{Code: "BIG", Kind: domain.CouponKindFlat, Value: dec("5"), MinSubtotal: &minimum},
	)
	engine, err := NewCouponEngine(CouponEngineDeps{Coupons: repo})
	if err != nil {
		t.Fatalf("NewCouponEngine: %v", err)
	}
	ctx := context.Background()

	coupon, err := engine.Validate(ctx, " save10 ", dec("20"), now)
	if err != nil {
		t.Fatalf("Validate SAVE10: %v", err)
	}
	if coupon.Code != "SAVE10" {
		t.Fatalf("expected normalised code, got %s", coupon.Code)
	}
	if repo.codes[0] != "SAVE10" {
		t.Fatalf("expected lookup with normalised code, got %q", repo.codes[0])
	}

	cases := []struct {
		code     string
		subtotal string
		reason   CouponReason
	}{
		{"OLD", "20", CouponExpired},
		{"BIG", "49.99", CouponMinimumNotMet},
		{"NOPE", "20", CouponUnknown},
		{"   ", "20", CouponUnknown},
	}
	for _, tc := range cases {
		_, err := engine.Validate(ctx, tc.code, dec(tc.subtotal), now)
		var couponErr *CouponError
		if !errors.As(err, &couponErr) {
			t.Fatalf("code %q: expected CouponError, got %v", tc.code, err)
		}
		if couponErr.Reason != tc.reason {
			t.Fatalf("code %q: expected reason %s, got %s", tc.code, tc.reason, couponErr.Reason)
		}
		if !errors.Is(err, ErrCoupon) {
			t.Fatalf("code %q: expected ErrCoupon match", tc.code)
		}
	}

	if _, err := engine.Validate(ctx, "BIG", dec("50"), now); err != nil {
		t.Fatalf("minimum is inclusive: %v", err)
	}
}

func TestCouponEngineValidateUnavailable(t *testing.T) {
	var logged []string
	repo := &stubCouponRepository{
		findFn: func(context.Context, string) (domain.Coupon, error) {
			return domain.Coupon{}, repositories.NewError("coupons.find", repositories.ErrorKindUnavailable, errors.New("timeout"))
		},
	}
	engine, err := NewCouponEngine(CouponEngineDeps{
		Coupons: repo,
		Logger: func(_ context.Context, event string, _ map[string]any) {
			logged = append(logged, event)
		},
	})
	if err != nil {
		t.Fatalf("NewCouponEngine: %v", err)
	}

	_, err = engine.Validate(context.Background(), "SAVE10", dec("20"), time.Now())
	if !errors.Is(err, ErrCouponLookupUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if errors.Is(err, ErrCoupon) {
		t.Fatalf("lookup outage must not be reported as a rejected coupon")
	}
	if len(logged) != 1 || logged[0] != "coupon.lookup.unavailable" {
		t.Fatalf("expected unavailable log, got %v", logged)
	}
}

func TestNewCouponEngineRequiresRepository(t *testing.T) {
	if _, err := NewCouponEngine(CouponEngineDeps{}); err == nil {
		t.Fatalf("expected error when repository missing")
	}
}
