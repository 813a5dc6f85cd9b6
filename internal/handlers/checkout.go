package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/httpx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/observability"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

// CheckoutHandlers drives checkout drafts through the step machine and places orders.
type CheckoutHandlers struct {
	checkout services.CheckoutService
	coupons  *attemptLimiter
}

// CheckoutOption customises CheckoutHandlers.
type CheckoutOption func(*CheckoutHandlers)

// WithCouponAttemptLimit caps coupon attempts per draft within window. Zero values disable it.
func WithCouponAttemptLimit(limit int, window time.Duration, clock func() time.Time) CheckoutOption {
	return func(h *CheckoutHandlers) {
		h.coupons = newAttemptLimiter(limit, window, clock)
	}
}

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout services.CheckoutService, opts ...CheckoutOption) *CheckoutHandlers {
	h := &CheckoutHandlers{checkout: checkout}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers draft endpoints under /checkout.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/drafts", h.createDraft)
	r.Route("/drafts/{draftId}", func(d chi.Router) {
		d.Use(observability.ResourceMiddleware("draft", "draftId"))
		d.Get("/", h.getDraft)
		d.Put("/items", h.setItems)
		d.Put("/shipping", h.updateShipping)
		d.Put("/delivery", h.selectDelivery)
		d.Put("/payment", h.selectPayment)
		d.Put("/notes", h.updateNotes)
		d.Post("/coupon", h.applyCoupon)
		d.Delete("/coupon", h.removeCoupon)
		d.Post("/advance", h.advance)
		d.Post("/back", h.back)
		d.Post("/place", h.place)
	})
}

type createDraftRequest struct {
	OrderID string            `json:"orderId"`
	Items   []cartItemRequest `json:"items"`
}

type itemsRequest struct {
	Items []cartItemRequest `json:"items"`
}

type deliveryRequest struct {
	Method string `json:"method"`
	Slot   string `json:"slot"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type placeRequest struct {
	ShownTotal string `json:"shownTotal"`
}

func (h *CheckoutHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.checkout == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *CheckoutHandlers) createDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req createDraftRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	items, err := parseItems(req.Items)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	draft, err := h.checkout.CreateDraft(ctx, services.CreateDraftCommand{
		OrderID: strings.TrimSpace(req.OrderID),
		Items:   items,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/checkout/drafts/%s", apiPrefix, draft.ID))
	writeJSON(w, http.StatusCreated, newDraftPayload(displayTag(r), draft))
}

func (h *CheckoutHandlers) getDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	draft, err := h.checkout.GetDraft(ctx, chi.URLParam(r, "draftId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDraftPayload(displayTag(r), draft))
}

func (h *CheckoutHandlers) setItems(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	items, err := parseItems(req.Items)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventSetItems, Items: items})
}

func (h *CheckoutHandlers) updateShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	info := req.toDomain()
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventUpdateShipping, Shipping: &info})
}

func (h *CheckoutHandlers) selectDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	method, err := parseMethod("method", req.Method, false)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	slot, err := parseSlot("slot", req.Slot)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventSelectDelivery, Method: method, Slot: slot})
}

func (h *CheckoutHandlers) selectPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	info := req.toDomain()
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventSelectPayment, Payment: &info})
}

func (h *CheckoutHandlers) updateNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventUpdateNotes, Notes: req.Notes})
}

func (h *CheckoutHandlers) removeCoupon(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventRemoveCoupon})
}

func (h *CheckoutHandlers) advance(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventAdvance})
}

func (h *CheckoutHandlers) back(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, services.CheckoutEvent{Kind: services.CheckoutEventBack})
}

func (h *CheckoutHandlers) applyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req couponRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeServiceError(ctx, w, &services.ValidationError{Fields: map[string]string{"code": "is required"}})
		return
	}
	draftID := chi.URLParam(r, "draftId")
	if !h.coupons.Allow(draftID) {
		httpx.WriteError(ctx, w, httpx.NewError("too_many_attempts", "too many coupon attempts; try again later", http.StatusTooManyRequests))
		return
	}
	draft, err := h.checkout.ApplyCoupon(ctx, services.ApplyCouponCommand{
		DraftID: draftID,
		Code:    req.Code,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDraftPayload(displayTag(r), draft))
}

func (h *CheckoutHandlers) place(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req placeRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	cmd := services.PlaceOrderCommand{DraftID: chi.URLParam(r, "draftId")}
	if raw := strings.TrimSpace(req.ShownTotal); raw != "" {
		shown, err := decimal.NewFromString(raw)
		if err != nil {
			writeServiceError(ctx, w, &services.ValidationError{Fields: map[string]string{"shownTotal": "must be a decimal amount"}})
			return
		}
		cmd.ShownTotal = &shown
	}

	order, err := h.checkout.Place(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/orders/%s", apiPrefix, order.ID))
	writeJSON(w, http.StatusCreated, newOrderPayload(displayTag(r), order))
}

func (h *CheckoutHandlers) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if err := decodeBody(r, dst, optional); err != nil {
		writeBodyError(r.Context(), w, err)
		return false
	}
	return true
}

func (h *CheckoutHandlers) apply(w http.ResponseWriter, r *http.Request, event services.CheckoutEvent) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	draft, err := h.checkout.Apply(ctx, services.ApplyCheckoutEventCommand{
		DraftID: chi.URLParam(r, "draftId"),
		Event:   event,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDraftPayload(displayTag(r), draft))
}
