package domain

import "time"

// CheckoutStep enumerates the checkout states in forward order.
type CheckoutStep string

const (
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepDelivery CheckoutStep = "delivery"
	CheckoutStepPayment  CheckoutStep = "payment"
	CheckoutStepReview   CheckoutStep = "review"
	CheckoutStepPlaced   CheckoutStep = "placed"
)

// CheckoutSteps lists the steps in forward order.
var CheckoutSteps = []CheckoutStep{
	CheckoutStepShipping,
	CheckoutStepDelivery,
	CheckoutStepPayment,
	CheckoutStepReview,
	CheckoutStepPlaced,
}

// ShippingInfo is the destination captured at the shipping step.
type ShippingInfo struct {
	FullName   string
	Phone      string
	Email      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// PaymentMethod is either a card or cash on delivery.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
)

// PaymentInfo is the payment selection. Card fields are only set for PaymentMethodCard.
type PaymentInfo struct {
	Method     PaymentMethod
	CardNumber string
	CardHolder string
	CardExpiry string
}

// OrderDraft is the in-progress checkout state. ID is generated on the client side (or at draft
// creation) and doubles as the idempotency key for placement.
type OrderDraft struct {
	ID          string
	Step        CheckoutStep
	Currency    string
	Items       []CartItem
	Shipping    ShippingInfo
	Zone        Zone
	Method      ShippingMethod
	Slot        TimeSlot
	Payment     PaymentInfo
	Coupon      *Coupon
	Quote       *ShippingQuote
	Pricing     *PricingBreakdown
	Notes       string
	OrderNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PlacedAt    *time.Time
}

// Clone returns a deep copy so transitions never share mutable state with their input.
func (d OrderDraft) Clone() OrderDraft {
	out := d
	if d.Items != nil {
		out.Items = append([]CartItem(nil), d.Items...)
	}
	if d.Coupon != nil {
		c := *d.Coupon
		out.Coupon = &c
	}
	if d.Quote != nil {
		q := *d.Quote
		out.Quote = &q
	}
	if d.Pricing != nil {
		p := *d.Pricing
		out.Pricing = &p
	}
	if d.PlacedAt != nil {
		t := *d.PlacedAt
		out.PlacedAt = &t
	}
	return out
}

// Redacted returns the draft as it may be stored. Once placed only the last four card digits
// remain and the expiry is dropped.
func (d OrderDraft) Redacted() OrderDraft {
	out := d.Clone()
	if out.Step != CheckoutStepPlaced {
		return out
	}
	if n := len(out.Payment.CardNumber); n > 4 {
		out.Payment.CardNumber = out.Payment.CardNumber[n-4:]
	}
	out.Payment.CardExpiry = ""
	return out
}
