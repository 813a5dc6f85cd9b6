package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/textutil"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

var displayLanguages = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Japanese,
})

// displayTag picks the locale used for human-readable totals.
func displayTag(r *http.Request) language.Tag {
	tag, _ := language.MatchStrings(displayLanguages, r.Header.Get("Accept-Language"))
	return tag
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type shippingRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Line1      string `json:"address"`
	Line2      string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (s shippingRequest) toDomain() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   s.FullName,
		Phone:      s.Phone,
		Email:      s.Email,
		Line1:      s.Line1,
		Line2:      s.Line2,
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
		Country:    s.Country,
	}
}

type paymentRequest struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	CardExpiry string `json:"cardExpiry"`
}

func (p paymentRequest) toDomain() domain.PaymentInfo {
	return domain.PaymentInfo{
		Method:     domain.PaymentMethod(strings.ToLower(strings.TrimSpace(p.Method))),
		CardNumber: p.CardNumber,
		CardHolder: p.CardHolder,
		CardExpiry: p.CardExpiry,
	}
}

// parseItems converts request lines. Prices must be non-negative decimal strings.
func parseItems(lines []cartItemRequest) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(lines))
	fields := map[string]string{}
	for i, line := range lines {
		price, err := domain.ParseMoney(strings.TrimSpace(line.Price))
		if err != nil {
			fields[fmt.Sprintf("items[%d].price", i)] = "must be a non-negative decimal amount"
			continue
		}
		items = append(items, domain.CartItem{
			ProductID: strings.TrimSpace(line.ProductID),
			Name:      textutil.StripMarkup(line.Name),
			Price:     price,
			Quantity:  line.Quantity,
		})
	}
	if len(fields) > 0 {
		return nil, &services.ValidationError{Fields: fields}
	}
	return items, nil
}

func parseMethod(field, raw string, optional bool) (domain.ShippingMethod, error) {
	if optional && strings.TrimSpace(raw) == "" {
		return "", nil
	}
	method, ok := domain.ParseShippingMethod(raw)
	if !ok {
		return "", &services.ValidationError{Fields: map[string]string{field: "must be one of standard, express, same-day, pickup"}}
	}
	return method, nil
}

func parseSlot(field, raw string) (domain.TimeSlot, error) {
	slot, ok := domain.ParseTimeSlot(raw)
	if !ok {
		return "", &services.ValidationError{Fields: map[string]string{field: "must be one of any, morning, afternoon, evening"}}
	}
	return slot, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	v, err := domain.ParseMoney(trimmed)
	if err != nil {
		return decimal.Zero, &services.ValidationError{Fields: map[string]string{field: "must be a non-negative decimal amount"}}
	}
	return v, nil
}

type itemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

func newItemPayloads(items []domain.CartItem) []itemPayload {
	out := make([]itemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, itemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     domain.FormatMoney(domain.RoundMoney(item.Price)),
			Quantity:  item.Quantity,
			LineTotal: domain.FormatMoney(domain.RoundMoney(item.LineTotal())),
		})
	}
	return out
}

type quotePayload struct {
	Zone                string `json:"zone"`
	Method              string `json:"method"`
	Slot                string `json:"slot"`
	Cost                string `json:"cost"`
	MinDays             int    `json:"minDays"`
	MaxDays             int    `json:"maxDays"`
	EarliestDate        string `json:"earliestDate"`
	LatestDate          string `json:"latestDate"`
	FreeShippingApplied bool   `json:"freeShippingApplied"`
}

func newQuotePayload(q domain.ShippingQuote) quotePayload {
	return quotePayload{
		Zone:                string(q.Zone),
		Method:              string(q.Method),
		Slot:                string(q.Slot),
		Cost:                domain.FormatMoney(domain.RoundMoney(q.Cost)),
		MinDays:             q.MinDays,
		MaxDays:             q.MaxDays,
		EarliestDate:        formatDate(q.MinDate),
		LatestDate:          formatDate(q.MaxDate),
		FreeShippingApplied: q.FreeShippingApplied,
	}
}

type pricingPayload struct {
	domain.PricingPayload
	DisplayTotal string `json:"displayTotal"`
}

func newPricingPayload(tag language.Tag, p domain.PricingBreakdown) pricingPayload {
	payload := domain.NewPricingPayload(p)
	return pricingPayload{
		PricingPayload: payload,
		DisplayTotal:   textutil.FormatMoney(tag, p.Currency, p.Rounded().Total),
	}
}

type couponPayload struct {
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Value       string `json:"value"`
	MinSubtotal string `json:"minSubtotal,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	Description string `json:"description,omitempty"`
}

func newCouponPayload(c *domain.Coupon) *couponPayload {
	if c == nil {
		return nil
	}
	out := &couponPayload{
		Code:        c.Code,
		Kind:        string(c.Kind),
		Value:       c.Value.String(),
		Description: c.Description,
	}
	if c.MinSubtotal != nil {
		out.MinSubtotal = domain.FormatMoney(*c.MinSubtotal)
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = formatTime(*c.ExpiresAt)
	}
	return out
}

type paymentPayload struct {
	Method     string `json:"method,omitempty"`
	CardHolder string `json:"cardHolder,omitempty"`
	CardLast4  string `json:"cardLast4,omitempty"`
}

func lastFour(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func newShippingPayload(info domain.ShippingInfo, zone domain.Zone) domain.ShippingInfoPayload {
	return domain.ShippingInfoPayload{
		FullName:   info.FullName,
		Phone:      info.Phone,
		Email:      info.Email,
		Line1:      info.Line1,
		Line2:      info.Line2,
		City:       info.City,
		State:      info.State,
		PostalCode: info.PostalCode,
		Country:    info.Country,
		Zone:       string(zone),
	}
}

type draftPayload struct {
	ID          string                     `json:"id"`
	Step        string                     `json:"step"`
	Currency    string                     `json:"currency"`
	Items       []itemPayload              `json:"items"`
	Shipping    domain.ShippingInfoPayload `json:"shipping"`
	Method      string                     `json:"method,omitempty"`
	Slot        string                     `json:"slot,omitempty"`
	Payment     paymentPayload             `json:"payment"`
	Coupon      *couponPayload             `json:"coupon,omitempty"`
	Quote       *quotePayload              `json:"quote,omitempty"`
	Pricing     *pricingPayload            `json:"pricing,omitempty"`
	Notes       string                     `json:"notes,omitempty"`
	OrderNumber string                     `json:"orderNumber,omitempty"`
	CreatedAt   string                     `json:"createdAt"`
	UpdatedAt   string                     `json:"updatedAt"`
	PlacedAt    string                     `json:"placedAt,omitempty"`
}

// newDraftPayload never echoes the full card number or expiry back to the client.
func newDraftPayload(tag language.Tag, d domain.OrderDraft) draftPayload {
	out := draftPayload{
		ID:       d.ID,
		Step:     string(d.Step),
		Currency: d.Currency,
		Items:    newItemPayloads(d.Items),
		Shipping: newShippingPayload(d.Shipping, d.Zone),
		Method:   string(d.Method),
		Slot:     string(d.Slot),
		Payment: paymentPayload{
			Method:     string(d.Payment.Method),
			CardHolder: d.Payment.CardHolder,
			CardLast4:  lastFour(d.Payment.CardNumber),
		},
		Coupon:      newCouponPayload(d.Coupon),
		Notes:       d.Notes,
		OrderNumber: d.OrderNumber,
		CreatedAt:   formatTime(d.CreatedAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
	}
	if d.Quote != nil {
		q := newQuotePayload(*d.Quote)
		out.Quote = &q
	}
	if d.Pricing != nil {
		p := newPricingPayload(tag, *d.Pricing)
		out.Pricing = &p
	}
	if d.PlacedAt != nil {
		out.PlacedAt = formatTime(*d.PlacedAt)
	}
	return out
}

type statusEntryPayload struct {
	Status string `json:"status"`
	At     string `json:"at"`
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type orderPayload struct {
	ID                 string                      `json:"id"`
	OrderNumber        string                      `json:"orderNumber"`
	Status             string                      `json:"status"`
	Progress           float64                     `json:"progress"`
	AllowedTransitions []string                    `json:"allowedTransitions"`
	Currency           string                      `json:"currency"`
	Items              []itemPayload               `json:"items"`
	Pricing            pricingPayload              `json:"pricing"`
	Shipping           domain.ShippingInfoPayload  `json:"shipping"`
	ShippingMethod     string                      `json:"shippingMethod"`
	DeliveryTimeSlot   string                      `json:"deliveryTimeSlot"`
	EarliestDelivery   string                      `json:"earliestDelivery,omitempty"`
	LatestDelivery     string                      `json:"latestDelivery,omitempty"`
	Payment            domain.PaymentInfoPayload   `json:"payment"`
	Notes              string                      `json:"notes,omitempty"`
	Tracking           *domain.TrackingInfoPayload `json:"tracking,omitempty"`
	StatusHistory      []statusEntryPayload        `json:"statusHistory"`
	PlacedAt           string                      `json:"placedAt"`
	UpdatedAt          string                      `json:"updatedAt,omitempty"`
}

func newOrderPayload(tag language.Tag, o domain.Order) orderPayload {
	allowed := services.AllowedTransitions(o.Status)
	transitions := make([]string, 0, len(allowed))
	for _, status := range allowed {
		transitions = append(transitions, string(status))
	}
	history := make([]statusEntryPayload, 0, len(o.StatusHistory))
	for _, entry := range o.StatusHistory {
		history = append(history, statusEntryPayload{
			Status: string(entry.Status),
			At:     formatTime(entry.At),
			Actor:  entry.Actor,
			Reason: entry.Reason,
		})
	}

	out := orderPayload{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		Status:             string(o.Status),
		Progress:           services.OrderProgress(o),
		AllowedTransitions: transitions,
		Currency:           o.Currency,
		Items:              newItemPayloads(o.Items),
		Pricing:            newPricingPayload(tag, o.Pricing),
		Shipping:           newShippingPayload(o.Shipping, o.Zone),
		ShippingMethod:     string(o.ShippingMethod),
		DeliveryTimeSlot:   string(o.DeliveryTimeSlot),
		EarliestDelivery:   formatDate(o.Delivery.Earliest),
		LatestDelivery:     formatDate(o.Delivery.Latest),
		Payment: domain.PaymentInfoPayload{
			Method:    string(o.Payment.Method),
			CardLast4: o.Payment.CardLast4,
		},
		Notes:         o.Notes,
		StatusHistory: history,
		PlacedAt:      formatTime(o.PlacedAt),
		UpdatedAt:     formatTime(o.UpdatedAt),
	}
	if o.Tracking != nil {
		out.Tracking = &domain.TrackingInfoPayload{
			Carrier:        o.Tracking.Carrier,
			TrackingNumber: o.Tracking.TrackingNumber,
			URL:            o.Tracking.URL,
		}
	}
	return out
}
