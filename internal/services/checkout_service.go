package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/idempotency"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const (
	checkoutMeterName         = "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services/checkout"
	placementKeyPrefix        = "checkout.place:"
	defaultPlacementLedgerTTL = 24 * time.Hour
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutDraftNotFound indicates the draft does not exist or has expired.
	ErrCheckoutDraftNotFound = errors.New("checkout: draft not found")
	// ErrCheckoutPlacementInProgress indicates another placement of the same draft is running.
	ErrCheckoutPlacementInProgress = errors.New("checkout: placement in progress")
	// ErrCheckoutConflict indicates the draft changed between two placement attempts.
	ErrCheckoutConflict = errors.New("checkout: conflict")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
)

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Flow        *CheckoutFlow
	Coupons     *CouponEngine
	Drafts      repositories.CheckoutDraftRepository
	Orders      repositories.OrderRepository
	Numbers     OrderNumberGenerator
	Ledger      idempotency.Store
	Submitter   OrderSubmitter
	Events      OrderEventPublisher
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
	Meter       metric.Meter
	LedgerTTL   time.Duration
}

type checkoutService struct {
	flow       *CheckoutFlow
	coupons    *CouponEngine
	drafts     repositories.CheckoutDraftRepository
	orders     repositories.OrderRepository
	numbers    OrderNumberGenerator
	ledger     idempotency.Store
	submitter  OrderSubmitter
	events     OrderEventPublisher
	unitOfWork repositories.UnitOfWork
	now        func() time.Time
	newID      func() string
	logger     func(ctx context.Context, event string, fields map[string]any)
	ledgerTTL  time.Duration

	placements  metric.Int64Counter
	staleQuotes metric.Int64Counter
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Flow == nil {
		return nil, errors.New("checkout service: checkout flow is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("checkout service: coupon engine is required")
	}
	if deps.Drafts == nil {
		return nil, errors.New("checkout service: draft repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Numbers == nil {
		return nil, errors.New("checkout service: order number generator is required")
	}
	if deps.Submitter == nil {
		return nil, errors.New("checkout service: order submitter is required")
	}

	ledger := deps.Ledger
	if ledger == nil {
		ledger = idempotency.NewMemoryStore()
	}
	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return orderIDPrefix + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	ttl := deps.LedgerTTL
	if ttl <= 0 {
		ttl = defaultPlacementLedgerTTL
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(checkoutMeterName)
	}

	placements, err := meter.Int64Counter(
		"checkout.placements",
		metric.WithDescription("Count of checkout placement attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("checkout service: register placement metric: %w", err)
	}
	staleQuotes, err := meter.Int64Counter(
		"checkout.stale_quotes",
		metric.WithDescription("Count of placements rejected because the shown total moved"),
	)
	if err != nil {
		return nil, fmt.Errorf("checkout service: register stale quote metric: %w", err)
	}

	return &checkoutService{
		flow:       deps.Flow,
		coupons:    deps.Coupons,
		drafts:     deps.Drafts,
		orders:     deps.Orders,
		numbers:    deps.Numbers,
		ledger:     ledger,
		submitter:  deps.Submitter,
		events:     deps.Events,
		unitOfWork: unit,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:       newID,
		logger:      logger,
		ledgerTTL:   ttl,
		placements:  placements,
		staleQuotes: staleQuotes,
	}, nil
}

func (s *checkoutService) CreateDraft(ctx context.Context, cmd CreateDraftCommand) (OrderDraft, error) {
	id := strings.TrimSpace(cmd.OrderID)
	if id == "" {
		id = s.newID()
	}

	if _, err := s.drafts.Get(ctx, id); err == nil {
		return OrderDraft{}, fmt.Errorf("%w: draft %s already exists", ErrCheckoutConflict, id)
	} else if !repositories.IsNotFound(err) {
		return OrderDraft{}, s.mapDraftError(err)
	}

	draft, err := s.flow.NewDraft(id, cmd.Items, s.now())
	if err != nil {
		return OrderDraft{}, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return OrderDraft{}, s.mapDraftError(err)
	}
	return draft, nil
}

func (s *checkoutService) GetDraft(ctx context.Context, draftID string) (OrderDraft, error) {
	draftID = strings.TrimSpace(draftID)
	if draftID == "" {
		return OrderDraft{}, fmt.Errorf("%w: draft id is required", ErrCheckoutInvalidInput)
	}
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return OrderDraft{}, s.mapDraftError(err)
	}
	return draft, nil
}

// Apply feeds a non-placement event to a stored draft. Coupons go through ApplyCoupon so the
// code is validated against the store.
func (s *checkoutService) Apply(ctx context.Context, cmd ApplyCheckoutEventCommand) (OrderDraft, error) {
	switch cmd.Event.Kind {
	case CheckoutEventApplyCoupon:
		return OrderDraft{}, fmt.Errorf("%w: coupons are applied by code", ErrCheckoutInvalidEvent)
	case CheckoutEventPlace:
		return OrderDraft{}, fmt.Errorf("%w: use place to submit the review step", ErrCheckoutInvalidEvent)
	}

	draft, err := s.GetDraft(ctx, cmd.DraftID)
	if err != nil {
		return OrderDraft{}, err
	}
	event := cmd.Event
	event.Now = s.now()

	next, err := s.flow.Transition(draft, event)
	if err != nil {
		return OrderDraft{}, err
	}
	if err := s.drafts.Save(ctx, next); err != nil {
		return OrderDraft{}, s.mapDraftError(err)
	}
	return next, nil
}

func (s *checkoutService) ApplyCoupon(ctx context.Context, cmd ApplyCouponCommand) (OrderDraft, error) {
	draft, err := s.GetDraft(ctx, cmd.DraftID)
	if err != nil {
		return OrderDraft{}, err
	}
	if draft.Step == domain.CheckoutStepPlaced {
		return OrderDraft{}, ErrCheckoutDraftPlaced
	}

	now := s.now()
	coupon, err := s.coupons.Validate(ctx, cmd.Code, Subtotal(draft.Items), now)
	if err != nil {
		return OrderDraft{}, err
	}
	next, err := s.flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventApplyCoupon, Coupon: &coupon, Now: now})
	if err != nil {
		return OrderDraft{}, err
	}
	if err := s.drafts.Save(ctx, next); err != nil {
		return OrderDraft{}, s.mapDraftError(err)
	}
	return next, nil
}

// Place submits the review step. The draft ID doubles as the order ID, so replays of the same
// placement return the order created by the first attempt.
func (s *checkoutService) Place(ctx context.Context, cmd PlaceOrderCommand) (Order, error) {
	draft, err := s.GetDraft(ctx, cmd.DraftID)
	if err != nil {
		return Order{}, err
	}
	if draft.Step == domain.CheckoutStepPlaced {
		s.recordPlacement(ctx, "replayed")
		return s.findOrder(ctx, draft.ID)
	}

	now := s.now()
	placed, err := s.flow.Transition(draft, CheckoutEvent{Kind: CheckoutEventPlace, ShownTotal: cmd.ShownTotal, Now: now})
	if err != nil {
		var stale *StaleQuoteError
		if errors.As(err, &stale) {
			s.handleStaleQuote(ctx, draft, stale, now)
		}
		s.recordPlacement(ctx, "rejected")
		return Order{}, err
	}

	key := placementKeyPrefix + placed.ID
	fingerprint := placementFingerprint(placed)
	reservation, err := s.ledger.Reserve(ctx, key, fingerprint, now, s.ledgerTTL)
	if err != nil {
		if errors.Is(err, idempotency.ErrFingerprintMismatch) {
			return Order{}, fmt.Errorf("%w: draft %s changed during placement", ErrCheckoutConflict, placed.ID)
		}
		s.logger(ctx, "checkout.ledger.reserve.failed", map[string]any{
			"draft": placed.ID,
			"error": err.Error(),
		})
		return Order{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	switch reservation.State {
	case idempotency.ReservationStateCompleted:
		s.recordPlacement(ctx, "replayed")
		return s.findOrder(ctx, reservation.Record.Result.OrderID)
	case idempotency.ReservationStatePending:
		return Order{}, ErrCheckoutPlacementInProgress
	}

	order, err := s.placeReserved(ctx, placed, fingerprint)
	if err != nil {
		if releaseErr := s.ledger.Release(ctx, key, fingerprint); releaseErr != nil {
			s.logger(ctx, "checkout.ledger.release.failed", map[string]any{
				"draft": placed.ID,
				"error": releaseErr.Error(),
			})
		}
		s.recordPlacement(ctx, "failed")
		return Order{}, err
	}

	if err := s.ledger.Complete(ctx, key, fingerprint, idempotency.Result{OrderID: order.ID, OrderNumber: order.OrderNumber}, s.now(), s.ledgerTTL); err != nil {
		s.logger(ctx, "checkout.ledger.complete.failed", map[string]any{
			"order": order.ID,
			"error": err.Error(),
		})
	}

	placed.OrderNumber = order.OrderNumber
	if err := s.drafts.Save(ctx, placed); err != nil {
		s.logger(ctx, "checkout.draft.save.failed", map[string]any{
			"draft": placed.ID,
			"error": err.Error(),
		})
	}

	publishOrderEvent(ctx, s.events, s.logger, OrderEvent{
		Type:          orderEventPlaced,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CurrentStatus: string(order.Status),
		OccurredAt:    order.PlacedAt,
		Metadata: map[string]any{
			"total":    domain.FormatMoney(order.Pricing.Total),
			"currency": order.Currency,
			"zone":     string(order.Zone),
			"method":   string(order.ShippingMethod),
		},
	})
	s.recordPlacement(ctx, "placed")
	return order, nil
}

// placeReserved runs once the ledger holds the key: it numbers, stores and hands off the order.
// An order left by an earlier attempt whose submission failed is resubmitted as stored.
func (s *checkoutService) placeReserved(ctx context.Context, placed OrderDraft, fingerprint string) (Order, error) {
	order, found, err := s.storedPlacement(ctx, placed.ID, fingerprint)
	if err != nil {
		return Order{}, err
	}
	if !found {
		orderNumber, err := s.numbers.NextOrderNumber(ctx, *placed.PlacedAt)
		if err != nil {
			s.logger(ctx, "checkout.order_number.failed", map[string]any{
				"draft": placed.ID,
				"error": err.Error(),
			})
			return Order{}, fmt.Errorf("%w: allocate order number: %v", ErrCheckoutUnavailable, err)
		}
		order, err = BuildOrder(placed, orderNumber)
		if err != nil {
			return Order{}, err
		}
		order.PlacementFingerprint = fingerprint

		err = s.runInTx(ctx, func(txCtx context.Context) error {
			insertErr := s.orders.Insert(txCtx, order)
			if insertErr == nil || !repositories.IsConflict(insertErr) {
				return insertErr
			}
			existing, _, findErr := s.storedPlacement(txCtx, order.ID, fingerprint)
			if findErr != nil {
				return findErr
			}
			order = existing
			return nil
		})
		if err != nil {
			return Order{}, s.mapOrderError(err)
		}
	}

	if err := s.submitter.SubmitOrder(ctx, domain.NewOrderPayload(order)); err != nil {
		s.logger(ctx, "checkout.order.submit.failed", map[string]any{
			"order": order.ID,
			"error": err.Error(),
		})
		return Order{}, fmt.Errorf("%w: submit order: %v", ErrCheckoutUnavailable, err)
	}
	return order, nil
}

// storedPlacement loads an order stored under orderID by an earlier attempt. An order built from
// a different review is never resumed: the draft changed after it was stored.
func (s *checkoutService) storedPlacement(ctx context.Context, orderID, fingerprint string) (Order, bool, error) {
	existing, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Order{}, false, nil
		}
		return Order{}, false, s.mapOrderError(err)
	}
	if existing.PlacementFingerprint != fingerprint {
		s.logger(ctx, "checkout.place.review_mismatch", map[string]any{
			"order": orderID,
		})
		return Order{}, false, fmt.Errorf("%w: order %s was stored for a different review of the draft", ErrCheckoutConflict, orderID)
	}
	return existing, true, nil
}

// handleStaleQuote stores the repriced draft so the next read shows the current total.
func (s *checkoutService) handleStaleQuote(ctx context.Context, draft OrderDraft, stale *StaleQuoteError, now time.Time) {
	if s.staleQuotes != nil {
		s.staleQuotes.Add(ctx, 1)
	}
	s.logger(ctx, "checkout.place.stale_quote", map[string]any{
		"draft":   draft.ID,
		"shown":   domain.FormatMoney(stale.Shown),
		"current": domain.FormatMoney(stale.Current),
	})
	repriced, err := s.flow.Reprice(draft, now)
	if err != nil {
		return
	}
	repriced.UpdatedAt = now
	if err := s.drafts.Save(ctx, repriced); err != nil {
		s.logger(ctx, "checkout.draft.save.failed", map[string]any{
			"draft": draft.ID,
			"error": err.Error(),
		})
	}
}

func (s *checkoutService) findOrder(ctx context.Context, orderID string) (Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapOrderError(err)
	}
	return order, nil
}

func (s *checkoutService) recordPlacement(ctx context.Context, outcome string) {
	if s.placements == nil {
		return
	}
	s.placements.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *checkoutService) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.unitOfWork == nil {
		return fn(ctx)
	}
	return s.unitOfWork.RunInTx(ctx, fn)
}

func (s *checkoutService) mapDraftError(err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCheckoutDraftNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrCheckoutConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		}
	}
	return err
}

func (s *checkoutService) mapOrderError(err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsUnavailable() {
		return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	return mapOrderRepositoryError(err)
}

// placementFingerprint covers everything that ends up on the order. Two attempts with the same
// fingerprint would produce the same order.
func placementFingerprint(draft OrderDraft) string {
	parts := []string{
		draft.ID,
		string(draft.Zone),
		string(draft.Method),
		string(draft.Slot),
		string(draft.Payment.Method),
		lastFour(draft.Payment.CardNumber),
		draft.Shipping.FullName,
		draft.Shipping.Line1,
		draft.Shipping.City,
		draft.Shipping.PostalCode,
		draft.Shipping.Country,
	}
	for _, item := range draft.Items {
		parts = append(parts, item.ProductID, item.Price.String(), fmt.Sprint(item.Quantity))
	}
	if draft.Pricing != nil {
		parts = append(parts, domain.FormatMoney(draft.Pricing.Total))
	}
	if draft.Coupon != nil {
		parts = append(parts, draft.Coupon.Code)
	}
	return idempotency.Fingerprint(parts...)
}
