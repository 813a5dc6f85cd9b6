package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const (
	orderEventPlaced        = "order.placed"
	orderEventStatusChanged = "order.status.changed"

	orderIDPrefix = "ord_"
)

var (
	ErrOrderInvalidInput = errors.New("order: invalid input")
	ErrOrderNotFound     = errors.New("order: not found")
	// ErrOrderConflict covers duplicate inserts and writes that lost a transaction race.
	ErrOrderConflict    = errors.New("order: conflict")
	ErrOrderUnavailable = errors.New("order: repository unavailable")
)

// OrderServiceDeps lists the order service collaborators. Only Orders is required.
type OrderServiceDeps struct {
	Orders     repositories.OrderRepository
	UnitOfWork repositories.UnitOfWork
	Notifier   OrderStatusNotifier
	Events     OrderEventPublisher
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders     repositories.OrderRepository
	unitOfWork repositories.UnitOfWork
	notifier   OrderStatusNotifier
	events     OrderEventPublisher
	clock      func() time.Time
	logger     func(context.Context, string, map[string]any)
}

// NewOrderService builds the lifecycle service. Without a UnitOfWork, transitions run without a
// transaction.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:     deps.Orders,
		unitOfWork: unit,
		notifier:   deps.Notifier,
		events:     deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, mapOrderRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	target, ok := ParseOrderStatus(cmd.TargetStatus)
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown target status %q", ErrOrderInvalidInput, cmd.TargetStatus)
	}
	if cmd.Tracking != nil && strings.TrimSpace(cmd.Tracking.TrackingNumber) == "" {
		return Order{}, fmt.Errorf("%w: tracking number is required when tracking info is supplied", ErrOrderInvalidInput)
	}

	return s.transition(ctx, orderID, cmd.ExpectedStatus, StatusChange{
		Target:   target,
		Actor:    cmd.ActorID,
		Reason:   cmd.Reason,
		Tracking: cmd.Tracking,
	})
}

func (s *orderService) Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	return s.transition(ctx, orderID, nil, StatusChange{
		Target: domain.OrderStatusCancelled,
		Actor:  cmd.ActorID,
		Reason: cmd.Reason,
	})
}

func (s *orderService) transition(ctx context.Context, orderID string, expected *string, change StatusChange) (Order, error) {
	var (
		updated    Order
		prevStatus domain.OrderStatus
	)
	change.At = s.now()

	err := s.runInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return mapOrderRepositoryError(err)
		}
		if expected != nil && string(order.Status) != strings.TrimSpace(*expected) {
			return fmt.Errorf("%w: expected status %q but was %q", ErrOrderConflict, *expected, order.Status)
		}
		prevStatus = order.Status

		next, err := ApplyStatusTransition(order, change)
		if err != nil {
			s.logger(txCtx, "order.transition.rejected", map[string]any{
				"order": orderID,
				"from":  string(order.Status),
				"to":    string(change.Target),
			})
			return err
		}
		if err := s.orders.Update(txCtx, next); err != nil {
			return mapOrderRepositoryError(err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.notifyStatus(ctx, updated)

	metadata := map[string]any{}
	if reason := strings.TrimSpace(change.Reason); reason != "" {
		metadata["reason"] = reason
	}
	if updated.Tracking != nil && change.Tracking != nil {
		metadata["trackingNumber"] = updated.Tracking.TrackingNumber
	}

	s.publishEvent(ctx, OrderEvent{
		Type:           orderEventStatusChanged,
		OrderID:        updated.ID,
		OrderNumber:    updated.OrderNumber,
		PreviousStatus: string(prevStatus),
		CurrentStatus:  string(updated.Status),
		ActorID:        strings.TrimSpace(change.Actor),
		OccurredAt:     change.At,
		Metadata:       metadata,
	})

	return updated, nil
}

func (s *orderService) notifyStatus(ctx context.Context, order Order) {
	if s.notifier == nil {
		return
	}
	payload := domain.NewStatusUpdatePayload(order.ID, order.Status, order.Tracking)
	if err := s.notifier.NotifyStatus(ctx, payload); err != nil {
		s.logger(ctx, "order.status.notify.failed", map[string]any{
			"order":  order.ID,
			"status": string(order.Status),
			"error":  err.Error(),
		})
	}
}

func (s *orderService) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.unitOfWork == nil {
		return fn(ctx)
	}
	return s.unitOfWork.RunInTx(ctx, fn)
}

func (s *orderService) now() time.Time {
	return s.clock()
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEvent) {
	publishOrderEvent(ctx, s.events, s.logger, event)
}

func publishOrderEvent(ctx context.Context, events OrderEventPublisher, logger func(context.Context, string, map[string]any), event OrderEvent) {
	if events == nil {
		return
	}
	if event.Metadata != nil {
		event.Metadata = maps.Clone(event.Metadata)
	}
	if err := events.PublishOrderEvent(ctx, event); err != nil {
		logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"order":  event.OrderID,
			"error":  err.Error(),
			"status": event.CurrentStatus,
		})
	}
}

func mapOrderRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
		}
	}

	return err
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
