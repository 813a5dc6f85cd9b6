// Package repositories declares the persistence contracts the services depend on. Backends live
// in the firestore and cache subpackages and in platform/remote; all report failures as *Error.
package repositories

import (
	"context"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// Registry is the set of repositories wired for one process. RunInTx spans every repository
// that shares the registry's backend.
type Registry interface {
	UnitOfWork
	Orders() OrderRepository
	Coupons() CouponRepository
	Drafts() CheckoutDraftRepository
	Counters() CounterRepository
	Health() HealthRepository
	Close(ctx context.Context) error
}

// UnitOfWork runs fn atomically where the backend supports it; otherwise fn simply runs.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository stores placed orders. Insert reports a conflict for an existing ID, which is
// what keeps placement at-most-once.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
}

// CouponRepository looks up coupons by code; unknown codes are not-found errors.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
}

// CheckoutDraftRepository keeps checkout drafts between steps. Expired drafts read as not found.
type CheckoutDraftRepository interface {
	Get(ctx context.Context, draftID string) (domain.OrderDraft, error)
	Save(ctx context.Context, draft domain.OrderDraft) error
	Delete(ctx context.Context, draftID string) error
}

// CounterRepository hands out sequence numbers. Next increments counterID and returns the new
// value, or ErrCounterExhausted once it would pass limit. Zero means no limit.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, limit int64) (int64, error)
}

// HealthRepository probes the dependencies behind /readyz.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
