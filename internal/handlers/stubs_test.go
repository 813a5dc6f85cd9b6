package handlers

import (
	"context"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

type stubFulfillmentService struct {
	resolveFunc func(country, city string) domain.Zone
	quoteFunc   func(ctx context.Context, cmd services.ShippingQuoteCommand) (domain.ShippingQuote, error)
	optionsFunc func(ctx context.Context, cmd services.ShippingOptionsCommand) ([]domain.ShippingQuote, error)
	priceFunc   func(ctx context.Context, cmd services.PriceCartCommand) (domain.PricingBreakdown, error)
}

func (s *stubFulfillmentService) ResolveZone(country, city string) domain.Zone {
	if s.resolveFunc != nil {
		return s.resolveFunc(country, city)
	}
	return domain.ZoneNational
}

func (s *stubFulfillmentService) Quote(ctx context.Context, cmd services.ShippingQuoteCommand) (domain.ShippingQuote, error) {
	if s.quoteFunc != nil {
		return s.quoteFunc(ctx, cmd)
	}
	return domain.ShippingQuote{}, nil
}

func (s *stubFulfillmentService) Options(ctx context.Context, cmd services.ShippingOptionsCommand) ([]domain.ShippingQuote, error) {
	if s.optionsFunc != nil {
		return s.optionsFunc(ctx, cmd)
	}
	return nil, nil
}

func (s *stubFulfillmentService) Price(ctx context.Context, cmd services.PriceCartCommand) (domain.PricingBreakdown, error) {
	if s.priceFunc != nil {
		return s.priceFunc(ctx, cmd)
	}
	return domain.PricingBreakdown{}, nil
}

type stubCheckoutService struct {
	createFunc func(ctx context.Context, cmd services.CreateDraftCommand) (domain.OrderDraft, error)
	getFunc    func(ctx context.Context, draftID string) (domain.OrderDraft, error)
	applyFunc  func(ctx context.Context, cmd services.ApplyCheckoutEventCommand) (domain.OrderDraft, error)
	couponFunc func(ctx context.Context, cmd services.ApplyCouponCommand) (domain.OrderDraft, error)
	placeFunc  func(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error)
}

func (s *stubCheckoutService) CreateDraft(ctx context.Context, cmd services.CreateDraftCommand) (domain.OrderDraft, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, cmd)
	}
	return domain.OrderDraft{}, nil
}

func (s *stubCheckoutService) GetDraft(ctx context.Context, draftID string) (domain.OrderDraft, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, draftID)
	}
	return domain.OrderDraft{}, services.ErrCheckoutDraftNotFound
}

func (s *stubCheckoutService) Apply(ctx context.Context, cmd services.ApplyCheckoutEventCommand) (domain.OrderDraft, error) {
	if s.applyFunc != nil {
		return s.applyFunc(ctx, cmd)
	}
	return domain.OrderDraft{}, nil
}

func (s *stubCheckoutService) ApplyCoupon(ctx context.Context, cmd services.ApplyCouponCommand) (domain.OrderDraft, error) {
	if s.couponFunc != nil {
		return s.couponFunc(ctx, cmd)
	}
	return domain.OrderDraft{}, nil
}

func (s *stubCheckoutService) Place(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error) {
	if s.placeFunc != nil {
		return s.placeFunc(ctx, cmd)
	}
	return domain.Order{}, nil
}

type stubOrderService struct {
	getFunc        func(ctx context.Context, orderID string) (domain.Order, error)
	transitionFunc func(ctx context.Context, cmd services.OrderStatusTransitionCommand) (domain.Order, error)
	cancelFunc     func(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, orderID)
	}
	return domain.Order{}, services.ErrOrderNotFound
}

func (s *stubOrderService) TransitionStatus(ctx context.Context, cmd services.OrderStatusTransitionCommand) (domain.Order, error) {
	if s.transitionFunc != nil {
		return s.transitionFunc(ctx, cmd)
	}
	return domain.Order{}, nil
}

func (s *stubOrderService) Cancel(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error) {
	if s.cancelFunc != nil {
		return s.cancelFunc(ctx, cmd)
	}
	return domain.Order{}, nil
}

var (
	_ services.FulfillmentService = (*stubFulfillmentService)(nil)
	_ services.CheckoutService    = (*stubCheckoutService)(nil)
	_ services.OrderService       = (*stubOrderService)(nil)
)
