package firestore

import (
	"context"
	"errors"
	"time"

	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// Registry wires the Firestore repositories behind repositories.Registry. Coupons, drafts and
// health can be swapped for other backends through options.
type Registry struct {
	provider *pfirestore.Provider
	unit     *pfirestore.UnitOfWork
	orders   repositories.OrderRepository
	coupons  repositories.CouponRepository
	drafts   repositories.CheckoutDraftRepository
	counters repositories.CounterRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// RegistryOption customises the registry.
type RegistryOption func(*Registry)

// WithCouponRepository replaces the Firestore coupon repository, e.g. with a cached remote store.
func WithCouponRepository(repo repositories.CouponRepository) RegistryOption {
	return func(r *Registry) {
		if repo != nil {
			r.coupons = repo
		}
	}
}

// WithDraftRepository replaces the Firestore draft repository.
func WithDraftRepository(repo repositories.CheckoutDraftRepository) RegistryOption {
	return func(r *Registry) {
		if repo != nil {
			r.drafts = repo
		}
	}
}

// WithHealthRepository replaces the default Firestore-only health probe.
func WithHealthRepository(repo repositories.HealthRepository) RegistryOption {
	return func(r *Registry) {
		if repo != nil {
			r.health = repo
		}
	}
}

// NewRegistry builds every repository on provider and applies opts.
func NewRegistry(provider *pfirestore.Provider, draftTTL time.Duration, opts ...RegistryOption) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("firestore registry: provider is required")
	}
	unit, err := pfirestore.NewUnitOfWork(provider)
	if err != nil {
		return nil, err
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, err
	}

	reg := &Registry{
		provider: provider,
		unit:     unit,
		orders:   orders,
		counters: counters,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}

	if reg.coupons == nil {
		coupons, err := NewCouponRepository(provider)
		if err != nil {
			return nil, err
		}
		reg.coupons = coupons
	}
	if reg.drafts == nil {
		drafts, err := NewDraftRepository(provider, draftTTL)
		if err != nil {
			return nil, err
		}
		reg.drafts = drafts
	}
	if reg.health == nil {
		health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
			{Name: "firestore", Critical: true, Check: provider.Ping},
		})
		if err != nil {
			return nil, err
		}
		reg.health = health
	}
	return reg, nil
}

func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

func (r *Registry) Orders() repositories.OrderRepository         { return r.orders }
func (r *Registry) Coupons() repositories.CouponRepository       { return r.coupons }
func (r *Registry) Drafts() repositories.CheckoutDraftRepository { return r.drafts }
func (r *Registry) Counters() repositories.CounterRepository     { return r.counters }
func (r *Registry) Health() repositories.HealthRepository        { return r.health }

// RunInTx groups repository calls in one Firestore transaction.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.unit.RunInTx(ctx, fn)
}
