package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	pcache "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/cache"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const defaultCouponTTL = 5 * time.Minute

// CouponRepositoryDeps wires a read-through coupon cache.
type CouponRepositoryDeps struct {
	Source repositories.CouponRepository
	Cache  pcache.Cache
	TTL    time.Duration
	Logger func(context.Context, string, map[string]any)
}

// CouponRepository caches successful coupon lookups in front of another CouponRepository.
// Unknown codes are never cached so a newly issued coupon is visible immediately.
type CouponRepository struct {
	source repositories.CouponRepository
	cache  pcache.Cache
	ttl    time.Duration
	logger func(context.Context, string, map[string]any)
}

var _ repositories.CouponRepository = (*CouponRepository)(nil)

// NewCouponRepository validates deps and returns the caching decorator.
func NewCouponRepository(deps CouponRepositoryDeps) (*CouponRepository, error) {
	if deps.Source == nil {
		return nil, errors.New("coupon cache: source repository is required")
	}
	if deps.Cache == nil {
		return nil, errors.New("coupon cache: cache is required")
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultCouponTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CouponRepository{source: deps.Source, cache: deps.Cache, ttl: ttl, logger: logger}, nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	normalized := domain.NormalizeCouponCode(code)
	if normalized == "" {
		return r.source.FindByCode(ctx, code)
	}
	key := r.cache.GenerateKey("coupon", normalized)

	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var entry couponEntry
		if decodeErr := json.Unmarshal([]byte(raw), &entry); decodeErr == nil {
			return entry.toDomain(), nil
		}
		r.logger(ctx, "coupon_cache.decode_failed", map[string]any{"code": normalized})
	case !errors.Is(err, pcache.ErrMiss):
		r.logger(ctx, "coupon_cache.get_failed", map[string]any{"code": normalized, "error": err.Error()})
	}

	coupon, err := r.source.FindByCode(ctx, normalized)
	if err != nil {
		return domain.Coupon{}, err
	}
	payload, err := json.Marshal(newCouponEntry(coupon))
	if err == nil {
		err = r.cache.Set(ctx, key, string(payload), r.ttl)
	}
	if err != nil {
		r.logger(ctx, "coupon_cache.set_failed", map[string]any{"code": normalized, "error": err.Error()})
	}
	return coupon, nil
}
