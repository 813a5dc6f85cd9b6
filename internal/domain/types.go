package domain

import (
	"time"
)

// OrderStatus enumerates valid lifecycle states for placed orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed and awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the order was accepted by the merchant.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing indicates the order is being picked and packed.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the parcel left the warehouse.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusOutForDelivery indicates the carrier is on the final leg.
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	// OrderStatusDelivered indicates the customer received the order.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled before delivery.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturned indicates a delivered order was sent back.
	OrderStatusReturned OrderStatus = "returned"
	// OrderStatusRefunded indicates a delivered order was refunded.
	OrderStatusRefunded OrderStatus = "refunded"
)

// OrderStages lists the forward path used for progress display.
var OrderStages = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// StatusEntry is one append-only history record.
type StatusEntry struct {
	Status OrderStatus
	At     time.Time
	Actor  string
	Reason string
}

// TrackingInfo carries carrier details attached to shipping transitions.
type TrackingInfo struct {
	Carrier        string
	TrackingNumber string
	URL            string
}

// PaymentSummary is the payment selection as stored on an order. Only the last four card
// digits survive placement.
type PaymentSummary struct {
	Method    PaymentMethod
	CardLast4 string
}

// DeliveryWindow is the estimated delivery date range.
type DeliveryWindow struct {
	Earliest time.Time
	Latest   time.Time
}

// Order is the immutable snapshot produced at placement plus its lifecycle state.
type Order struct {
	ID               string
	OrderNumber      string
	Currency         string
	Items            []CartItem
	Pricing          PricingBreakdown
	Shipping         ShippingInfo
	Zone             Zone
	ShippingMethod   ShippingMethod
	DeliveryTimeSlot TimeSlot
	Delivery         DeliveryWindow
	Payment          PaymentSummary
	Notes            string
	Status           OrderStatus
	StatusHistory    []StatusEntry
	Tracking         *TrackingInfo
	PlacedAt         time.Time
	UpdatedAt        time.Time
	// PlacementFingerprint identifies the reviewed draft this order was built from.
	PlacementFingerprint string
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]CartItem(nil), o.Items...)
	out.StatusHistory = append([]StatusEntry(nil), o.StatusHistory...)
	if o.Tracking != nil {
		t := *o.Tracking
		out.Tracking = &t
	}
	return out
}
