package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/httpx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

// FulfillmentHandlers serves stateless zone, quote and pricing previews.
type FulfillmentHandlers struct {
	fulfillment services.FulfillmentService
}

// NewFulfillmentHandlers constructs preview handlers.
func NewFulfillmentHandlers(fulfillment services.FulfillmentService) *FulfillmentHandlers {
	return &FulfillmentHandlers{fulfillment: fulfillment}
}

// ShippingRoutes registers endpoints under /shipping.
func (h *FulfillmentHandlers) ShippingRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/zone", h.resolveZone)
	r.Post("/quote", h.quote)
	r.Post("/options", h.options)
}

// PricingRoutes registers endpoints under /pricing.
func (h *FulfillmentHandlers) PricingRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.price)
}

type quoteRequest struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	Method   string `json:"method"`
	Slot     string `json:"slot"`
	Subtotal string `json:"subtotal"`
}

type optionsResponse struct {
	Zone    string         `json:"zone"`
	Options []quotePayload `json:"options"`
}

type priceRequest struct {
	Items      []cartItemRequest `json:"items"`
	Country    string            `json:"country"`
	City       string            `json:"city"`
	Method     string            `json:"method"`
	Slot       string            `json:"slot"`
	CouponCode string            `json:"couponCode"`
}

func (h *FulfillmentHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.fulfillment == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("fulfillment_unavailable", "fulfillment service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *FulfillmentHandlers) resolveZone(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	query := r.URL.Query()
	country := strings.TrimSpace(query.Get("country"))
	city := strings.TrimSpace(query.Get("city"))
	zone := h.fulfillment.ResolveZone(country, city)
	writeJSON(w, http.StatusOK, map[string]string{
		"country": country,
		"city":    city,
		"zone":    string(zone),
	})
}

func (h *FulfillmentHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req quoteRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	subtotal, err := parseAmount("subtotal", req.Subtotal)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	method, err := parseMethod("method", req.Method, false)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	slot, err := parseSlot("slot", req.Slot)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	quote, err := h.fulfillment.Quote(ctx, services.ShippingQuoteCommand{
		Country:  req.Country,
		City:     req.City,
		Method:   method,
		Slot:     slot,
		Subtotal: subtotal,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuotePayload(quote))
}

func (h *FulfillmentHandlers) options(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req quoteRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	subtotal, err := parseAmount("subtotal", req.Subtotal)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	slot, err := parseSlot("slot", req.Slot)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	quotes, err := h.fulfillment.Options(ctx, services.ShippingOptionsCommand{
		Country:  req.Country,
		City:     req.City,
		Slot:     slot,
		Subtotal: subtotal,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	resp := optionsResponse{
		Zone:    string(h.fulfillment.ResolveZone(req.Country, req.City)),
		Options: make([]quotePayload, 0, len(quotes)),
	}
	for _, q := range quotes {
		resp.Options = append(resp.Options, newQuotePayload(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FulfillmentHandlers) price(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req priceRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	items, err := parseItems(req.Items)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	method, err := parseMethod("method", req.Method, true)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	slot, err := parseSlot("slot", req.Slot)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	breakdown, err := h.fulfillment.Price(ctx, services.PriceCartCommand{
		Items:      items,
		Country:    req.Country,
		City:       req.City,
		Method:     method,
		Slot:       slot,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPricingPayload(displayTag(r), breakdown))
}
