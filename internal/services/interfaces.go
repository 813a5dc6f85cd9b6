package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Order            = domain.Order
	OrderDraft       = domain.OrderDraft
	OrderStatus      = domain.OrderStatus
	CartItem         = domain.CartItem
	Coupon           = domain.Coupon
	ShippingQuote    = domain.ShippingQuote
	PricingBreakdown = domain.PricingBreakdown
	ShippingInfo     = domain.ShippingInfo
	PaymentInfo      = domain.PaymentInfo
	TrackingInfo     = domain.TrackingInfo
)

// FulfillmentService answers zone, quote and price preview questions without touching a draft.
type FulfillmentService interface {
	ResolveZone(country, city string) domain.Zone
	Quote(ctx context.Context, cmd ShippingQuoteCommand) (ShippingQuote, error)
	Options(ctx context.Context, cmd ShippingOptionsCommand) ([]ShippingQuote, error)
	Price(ctx context.Context, cmd PriceCartCommand) (PricingBreakdown, error)
}

// CheckoutService owns checkout drafts and performs at-most-once placement.
type CheckoutService interface {
	CreateDraft(ctx context.Context, cmd CreateDraftCommand) (OrderDraft, error)
	GetDraft(ctx context.Context, draftID string) (OrderDraft, error)
	Apply(ctx context.Context, cmd ApplyCheckoutEventCommand) (OrderDraft, error)
	ApplyCoupon(ctx context.Context, cmd ApplyCouponCommand) (OrderDraft, error)
	Place(ctx context.Context, cmd PlaceOrderCommand) (Order, error)
}

// OrderService encapsulates post-placement reads and lifecycle transitions.
type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (Order, error)
	TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (Order, error)
	Cancel(ctx context.Context, cmd CancelOrderCommand) (Order, error)
}

// ShippingQuoteCommand requests a single quote for a destination.
type ShippingQuoteCommand struct {
	Country  string
	City     string
	Method   domain.ShippingMethod
	Slot     domain.TimeSlot
	Subtotal decimal.Decimal
}

// ShippingOptionsCommand requests every valid method for a destination.
type ShippingOptionsCommand struct {
	Country  string
	City     string
	Slot     domain.TimeSlot
	Subtotal decimal.Decimal
}

// PriceCartCommand previews a breakdown. An empty Method prices shipping at zero.
type PriceCartCommand struct {
	Items      []CartItem
	Country    string
	City       string
	Method     domain.ShippingMethod
	Slot       domain.TimeSlot
	CouponCode string
}

// CreateDraftCommand starts checkout. OrderID is the client-generated identifier; when blank the
// service generates one.
type CreateDraftCommand struct {
	OrderID string
	Items   []CartItem
}

// ApplyCheckoutEventCommand feeds one event to a stored draft. Event.Now is set by the service.
type ApplyCheckoutEventCommand struct {
	DraftID string
	Event   CheckoutEvent
}

// ApplyCouponCommand validates code and replaces any coupon on the draft.
type ApplyCouponCommand struct {
	DraftID string
	Code    string
}

// PlaceOrderCommand submits the review step. ShownTotal is the total the customer last saw.
type PlaceOrderCommand struct {
	DraftID    string
	ShownTotal *decimal.Decimal
}

// OrderStatusTransitionCommand moves an order along its lifecycle.
type OrderStatusTransitionCommand struct {
	OrderID        string
	TargetStatus   string
	ExpectedStatus *string
	ActorID        string
	Reason         string
	Tracking       *TrackingInfo
}

// CancelOrderCommand cancels an order that has not reached a terminal status.
type CancelOrderCommand struct {
	OrderID string
	ActorID string
	Reason  string
}

// OrderEventPublisher publishes order domain events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEvent captures metadata for emitted order domain events.
type OrderEvent struct {
	Type           string
	OrderID        string
	OrderNumber    string
	PreviousStatus string
	CurrentStatus  string
	ActorID        string
	OccurredAt     time.Time
	Metadata       map[string]any
}

// OrderSubmitter hands a placed order to the external order-persistence API. Implementations
// must be idempotent on payload.OrderID.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, payload domain.OrderPayload) error
}

// OrderStatusNotifier forwards lifecycle changes to the external order-management API.
type OrderStatusNotifier interface {
	NotifyStatus(ctx context.Context, payload domain.StatusUpdatePayload) error
}
