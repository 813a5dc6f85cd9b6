package firestore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// Amounts are stored as decimal strings so no precision is lost in Firestore's float64.

type cartItemDocument struct {
	ProductID string `firestore:"productId"`
	Name      string `firestore:"name"`
	Price     string `firestore:"price"`
	Quantity  int    `firestore:"quantity"`
}

type pricingDocument struct {
	Currency            string `firestore:"currency"`
	Subtotal            string `firestore:"subtotal"`
	Discount            string `firestore:"discount"`
	ShippingCost        string `firestore:"shippingCost"`
	Tax                 string `firestore:"tax"`
	TaxRate             string `firestore:"taxRate"`
	Total               string `firestore:"total"`
	CouponCode          string `firestore:"couponCode,omitempty"`
	FreeShippingApplied bool   `firestore:"freeShippingApplied"`
}

type shippingDocument struct {
	FullName   string `firestore:"fullName"`
	Phone      string `firestore:"phone"`
	Email      string `firestore:"email,omitempty"`
	Line1      string `firestore:"line1"`
	Line2      string `firestore:"line2,omitempty"`
	City       string `firestore:"city"`
	State      string `firestore:"state,omitempty"`
	PostalCode string `firestore:"postalCode"`
	Country    string `firestore:"country"`
}

type statusEntryDocument struct {
	Status string    `firestore:"status"`
	At     time.Time `firestore:"at"`
	Actor  string    `firestore:"actor,omitempty"`
	Reason string    `firestore:"reason,omitempty"`
}

type trackingDocument struct {
	Carrier        string `firestore:"carrier,omitempty"`
	TrackingNumber string `firestore:"trackingNumber"`
	URL            string `firestore:"url,omitempty"`
}

type couponDocument struct {
	Code        string     `firestore:"code"`
	Kind        string     `firestore:"kind"`
	Value       string     `firestore:"value"`
	MinSubtotal *string    `firestore:"minSubtotal,omitempty"`
	ExpiresAt   *time.Time `firestore:"expiresAt,omitempty"`
	Description string     `firestore:"description,omitempty"`
}

type quoteDocument struct {
	Zone                string    `firestore:"zone"`
	Method              string    `firestore:"method"`
	Slot                string    `firestore:"slot"`
	Cost                string    `firestore:"cost"`
	MinDays             int       `firestore:"minDays"`
	MaxDays             int       `firestore:"maxDays"`
	MinDate             time.Time `firestore:"minDate"`
	MaxDate             time.Time `firestore:"maxDate"`
	FreeShippingApplied bool      `firestore:"freeShippingApplied"`
}

func encodeItems(items []domain.CartItem) []cartItemDocument {
	out := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		out = append(out, cartItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
		})
	}
	return out
}

func decodeItems(docs []cartItemDocument) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(docs))
	for i, doc := range docs {
		price, err := parseAmount(doc.Price)
		if err != nil {
			return nil, fmt.Errorf("items[%d].price: %w", i, err)
		}
		items = append(items, domain.CartItem{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			Price:     price,
			Quantity:  doc.Quantity,
		})
	}
	return items, nil
}

func encodePricing(p domain.PricingBreakdown) pricingDocument {
	return pricingDocument{
		Currency:            p.Currency,
		Subtotal:            p.Subtotal.String(),
		Discount:            p.Discount.String(),
		ShippingCost:        p.ShippingCost.String(),
		Tax:                 p.Tax.String(),
		TaxRate:             p.TaxRate.String(),
		Total:               p.Total.String(),
		CouponCode:          p.CouponCode,
		FreeShippingApplied: p.FreeShippingApplied,
	}
}

func decodePricing(doc pricingDocument) (domain.PricingBreakdown, error) {
	out := domain.PricingBreakdown{
		Currency:            doc.Currency,
		CouponCode:          doc.CouponCode,
		FreeShippingApplied: doc.FreeShippingApplied,
	}
	fields := []struct {
		name   string
		raw    string
		target *decimal.Decimal
	}{
		{"subtotal", doc.Subtotal, &out.Subtotal},
		{"discount", doc.Discount, &out.Discount},
		{"shippingCost", doc.ShippingCost, &out.ShippingCost},
		{"tax", doc.Tax, &out.Tax},
		{"taxRate", doc.TaxRate, &out.TaxRate},
		{"total", doc.Total, &out.Total},
	}
	for _, field := range fields {
		value, err := parseAmount(field.raw)
		if err != nil {
			return domain.PricingBreakdown{}, fmt.Errorf("pricing.%s: %w", field.name, err)
		}
		*field.target = value
	}
	return out, nil
}

func encodeShipping(info domain.ShippingInfo) shippingDocument {
	return shippingDocument{
		FullName:   info.FullName,
		Phone:      info.Phone,
		Email:      info.Email,
		Line1:      info.Line1,
		Line2:      info.Line2,
		City:       info.City,
		State:      info.State,
		PostalCode: info.PostalCode,
		Country:    info.Country,
	}
}

func decodeShipping(doc shippingDocument) domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   doc.FullName,
		Phone:      doc.Phone,
		Email:      doc.Email,
		Line1:      doc.Line1,
		Line2:      doc.Line2,
		City:       doc.City,
		State:      doc.State,
		PostalCode: doc.PostalCode,
		Country:    doc.Country,
	}
}

func encodeHistory(entries []domain.StatusEntry) []statusEntryDocument {
	out := make([]statusEntryDocument, 0, len(entries))
	for _, entry := range entries {
		out = append(out, statusEntryDocument{
			Status: string(entry.Status),
			At:     entry.At.UTC(),
			Actor:  entry.Actor,
			Reason: entry.Reason,
		})
	}
	return out
}

func decodeHistory(docs []statusEntryDocument) []domain.StatusEntry {
	out := make([]domain.StatusEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.StatusEntry{
			Status: domain.OrderStatus(doc.Status),
			At:     doc.At.UTC(),
			Actor:  doc.Actor,
			Reason: doc.Reason,
		})
	}
	return out
}

func encodeTracking(info *domain.TrackingInfo) *trackingDocument {
	if info == nil {
		return nil
	}
	return &trackingDocument{
		Carrier:        info.Carrier,
		TrackingNumber: info.TrackingNumber,
		URL:            info.URL,
	}
}

func decodeTracking(doc *trackingDocument) *domain.TrackingInfo {
	if doc == nil {
		return nil
	}
	return &domain.TrackingInfo{
		Carrier:        doc.Carrier,
		TrackingNumber: doc.TrackingNumber,
		URL:            doc.URL,
	}
}

func encodeCoupon(c domain.Coupon) couponDocument {
	doc := couponDocument{
		Code:        domain.NormalizeCouponCode(c.Code),
		Kind:        string(c.Kind),
		Value:       c.Value.String(),
		Description: c.Description,
	}
	if c.MinSubtotal != nil {
		raw := c.MinSubtotal.String()
		doc.MinSubtotal = &raw
	}
	if c.ExpiresAt != nil {
		at := c.ExpiresAt.UTC()
		doc.ExpiresAt = &at
	}
	return doc
}

func decodeCoupon(id string, doc couponDocument) (domain.Coupon, error) {
	value, err := parseAmount(doc.Value)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("coupon %s value: %w", id, err)
	}
	code := doc.Code
	if strings.TrimSpace(code) == "" {
		code = id
	}
	coupon := domain.Coupon{
		Code:        domain.NormalizeCouponCode(code),
		Kind:        domain.CouponKind(strings.ToLower(strings.TrimSpace(doc.Kind))),
		Value:       value,
		Description: doc.Description,
	}
	if doc.MinSubtotal != nil {
		minimum, err := parseAmount(*doc.MinSubtotal)
		if err != nil {
			return domain.Coupon{}, fmt.Errorf("coupon %s minSubtotal: %w", id, err)
		}
		coupon.MinSubtotal = &minimum
	}
	if doc.ExpiresAt != nil {
		at := doc.ExpiresAt.UTC()
		coupon.ExpiresAt = &at
	}
	return coupon, nil
}

func encodeQuote(q *domain.ShippingQuote) *quoteDocument {
	if q == nil {
		return nil
	}
	return &quoteDocument{
		Zone:                string(q.Zone),
		Method:              string(q.Method),
		Slot:                string(q.Slot),
		Cost:                q.Cost.String(),
		MinDays:             q.MinDays,
		MaxDays:             q.MaxDays,
		MinDate:             q.MinDate.UTC(),
		MaxDate:             q.MaxDate.UTC(),
		FreeShippingApplied: q.FreeShippingApplied,
	}
}

func decodeQuote(doc *quoteDocument) (*domain.ShippingQuote, error) {
	if doc == nil {
		return nil, nil
	}
	cost, err := parseAmount(doc.Cost)
	if err != nil {
		return nil, fmt.Errorf("quote.cost: %w", err)
	}
	return &domain.ShippingQuote{
		Zone:                domain.Zone(doc.Zone),
		Method:              domain.ShippingMethod(doc.Method),
		Slot:                domain.TimeSlot(doc.Slot),
		Cost:                cost,
		MinDays:             doc.MinDays,
		MaxDays:             doc.MaxDays,
		MinDate:             doc.MinDate.UTC(),
		MaxDate:             doc.MaxDate.UTC(),
		FreeShippingApplied: doc.FreeShippingApplied,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
