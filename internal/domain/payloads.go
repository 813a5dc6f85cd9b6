package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderPayload is the body submitted to the order-persistence API at placement.
type OrderPayload struct {
	OrderID          string              `json:"orderId"`
	OrderNumber      string              `json:"orderNumber"`
	OrderItems       []OrderItemPayload  `json:"orderItems"`
	ShippingInfo     ShippingInfoPayload `json:"shippingInfo"`
	DeliveryTimeSlot string              `json:"deliveryTimeSlot"`
	ShippingMethod   string              `json:"shippingMethod"`
	Pricing          PricingPayload      `json:"pricing"`
	PaymentInfo      PaymentInfoPayload  `json:"paymentInfo"`
	PlacedAt         time.Time           `json:"placedAt"`
}

// OrderItemPayload is one cart line in outbound payloads.
type OrderItemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ShippingInfoPayload is the destination in outbound payloads.
type ShippingInfoPayload struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Line1      string `json:"address"`
	Line2      string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Zone       string `json:"zone"`
}

// PricingPayload is a display-rounded breakdown.
type PricingPayload struct {
	Currency            string `json:"currency"`
	Subtotal            string `json:"subtotal"`
	Discount            string `json:"discount"`
	ShippingCost        string `json:"shippingCost"`
	Tax                 string `json:"tax"`
	TaxRate             string `json:"taxRate"`
	Total               string `json:"total"`
	CouponCode          string `json:"couponCode,omitempty"`
	FreeShippingApplied bool   `json:"freeShippingApplied"`
}

// PaymentInfoPayload never carries a full card number.
type PaymentInfoPayload struct {
	Method    string `json:"method"`
	CardLast4 string `json:"cardLast4,omitempty"`
}

// StatusUpdatePayload is sent to the order-management API on lifecycle transitions.
type StatusUpdatePayload struct {
	OrderID      string               `json:"orderId"`
	NewStatus    string               `json:"newStatus"`
	TrackingInfo *TrackingInfoPayload `json:"trackingInfo,omitempty"`
}

// TrackingInfoPayload mirrors TrackingInfo on the wire.
type TrackingInfoPayload struct {
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"trackingNumber"`
	URL            string `json:"url,omitempty"`
}

// NewPricingPayload renders a breakdown at the display boundary.
func NewPricingPayload(p PricingBreakdown) PricingPayload {
	r := p.Rounded()
	return PricingPayload{
		Currency:            r.Currency,
		Subtotal:            FormatMoney(r.Subtotal),
		Discount:            FormatMoney(r.Discount),
		ShippingCost:        FormatMoney(r.ShippingCost),
		Tax:                 FormatMoney(r.Tax),
		TaxRate:             r.TaxRate.String(),
		Total:               FormatMoney(r.Total),
		CouponCode:          r.CouponCode,
		FreeShippingApplied: r.FreeShippingApplied,
	}
}

// NewOrderPayload builds the placement payload for order.
func NewOrderPayload(order Order) OrderPayload {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
		})
	}
	return OrderPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderItems:  items,
		ShippingInfo: ShippingInfoPayload{
			FullName:   order.Shipping.FullName,
			Phone:      order.Shipping.Phone,
			Email:      order.Shipping.Email,
			Line1:      order.Shipping.Line1,
			Line2:      order.Shipping.Line2,
			City:       order.Shipping.City,
			State:      order.Shipping.State,
			PostalCode: order.Shipping.PostalCode,
			Country:    order.Shipping.Country,
			Zone:       string(order.Zone),
		},
		DeliveryTimeSlot: string(order.DeliveryTimeSlot),
		ShippingMethod:   string(order.ShippingMethod),
		Pricing:          NewPricingPayload(order.Pricing),
		PaymentInfo: PaymentInfoPayload{
			Method:    string(order.Payment.Method),
			CardLast4: order.Payment.CardLast4,
		},
		PlacedAt: order.PlacedAt,
	}
}

// CartItems decodes the payload lines back into cart items.
func (p OrderPayload) CartItems() ([]CartItem, error) {
	items := make([]CartItem, 0, len(p.OrderItems))
	for i, line := range p.OrderItems {
		price, err := decimal.NewFromString(line.Price)
		if err != nil {
			return nil, fmt.Errorf("orderItems[%d].price: %w", i, err)
		}
		items = append(items, CartItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

// NewStatusUpdatePayload builds the lifecycle update body.
func NewStatusUpdatePayload(orderID string, status OrderStatus, tracking *TrackingInfo) StatusUpdatePayload {
	payload := StatusUpdatePayload{
		OrderID:   orderID,
		NewStatus: string(status),
	}
	if tracking != nil {
		payload.TrackingInfo = &TrackingInfoPayload{
			Carrier:        tracking.Carrier,
			TrackingNumber: tracking.TrackingNumber,
			URL:            tracking.URL,
		}
	}
	return payload
}
